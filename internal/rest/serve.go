// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package rest

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mlnoga/citra/internal/arith"
	"github.com/mlnoga/citra/internal/codec"
	"github.com/mlnoga/citra/internal/img"
	"github.com/mlnoga/citra/internal/ops"
	"github.com/mlnoga/citra/internal/ops/compose"
	"github.com/mlnoga/citra/internal/ops/hist"
	_ "github.com/mlnoga/citra/internal/ops/tone" // register operators
	"github.com/mlnoga/citra/internal/stats"
	"github.com/mlnoga/citra/internal/tonal"
)

// Maximum size of multipart uploads held in memory
const maxUploadMB = 64

// Creates the router for the REST API. Operators log to the given context
func NewRouter(ctx *ops.Context) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = maxUploadMB << 20
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.GET("/ops", getOps)
			v1.POST("/apply", func(c *gin.Context) { postApply(c, ctx) })
			v1.POST("/histogram", postHistogram)
		}
	}
	return r
}

// Listens and serves on the given address, e.g. ":8080"
func Serve(addr string, ctx *ops.Context) error {
	return NewRouter(ctx).Run(addr)
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// Lists the registered operators and the names accepted by their parameters
func getOps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"operators": ops.Names(),
		"arith":     arith.Ops(),
		"tints":     tonal.TintNames(),
		"fuzzySets": hist.FuzzySetNames(),
	})
}

// Maps error kinds to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, img.ErrInvalidParameter),
		errors.Is(err, img.ErrShapeMismatch),
		errors.Is(err, img.ErrInvalidShape),
		errors.Is(err, codec.ErrUnknownFormat),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

// Decodes the image uploaded in the given multipart form field
func formImage(c *gin.Context, field string) (*img.Image, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("%w: missing %s upload: %s", errBadRequest, field, err.Error())
	}
	return decodeUpload(fh)
}

func decodeUpload(fh *multipart.FileHeader) (*img.Image, string, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()
	f, format, err := codec.Decode(file)
	if err != nil {
		return nil, "", fmt.Errorf("%w: decoding %s: %s", errBadRequest, fh.Filename, err.Error())
	}
	return f, format, nil
}

// Rejects operators which would touch the server's file system
func checkNoFileAccess(op ops.Operator) error {
	switch o := op.(type) {
	case *ops.OpLoad, *ops.OpLoadMany, *ops.OpSave:
		return fmt.Errorf("%w: operator %s not allowed via REST", errBadRequest, op.GetType())
	case *compose.OpArith:
		if o.FileName != "" {
			return fmt.Errorf("%w: operand files not allowed via REST, upload an operand instead", errBadRequest)
		}
	case *compose.OpBlend:
		if o.FileName != "" {
			return fmt.Errorf("%w: operand files not allowed via REST, upload an operand instead", errBadRequest)
		}
	case *ops.OpSequence:
		for _, s := range o.Steps {
			if err := checkNoFileAccess(s); err != nil {
				return err
			}
		}
	case *ops.OpForEach:
		if o.Operation != nil {
			return checkNoFileAccess(o.Operation)
		}
	}
	return nil
}

// Applies an operator pipeline to an uploaded image. Multipart form fields:
// image (required), operand (optional second image), ops (operator JSON),
// format (optional output format, defaults to the input format or png)
func postApply(c *gin.Context, ctx *ops.Context) {
	f, format, err := formImage(c, "image")
	if err != nil {
		abortWithError(c, err)
		return
	}
	op, err := ops.NewOperatorFromJSON([]byte(c.PostForm("ops")))
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: parsing ops: %s", errBadRequest, err.Error()))
		return
	}
	if err := checkNoFileAccess(op); err != nil {
		abortWithError(c, err)
		return
	}

	local := *ctx
	if _, err := c.FormFile("operand"); err == nil {
		if local.Operand, _, err = formImage(c, "operand"); err != nil {
			abortWithError(c, err)
			return
		}
	}

	outs, err := op.MakePromises([]ops.Promise{ops.PromiseOf(&ops.Frame{Image: f})}, &local)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %s", errBadRequest, err.Error()))
		return
	}
	if len(outs) != 1 {
		abortWithError(c, fmt.Errorf("%w: pipeline yields %d images, want 1", errBadRequest, len(outs)))
		return
	}
	res, err := outs[0]()
	if err != nil {
		abortWithError(c, err)
		return
	}

	if fmtArg := c.PostForm("format"); fmtArg != "" {
		format = fmtArg
	}
	if format != codec.FormatPNG && format != codec.FormatJPEG && format != codec.FormatTIFF && format != codec.FormatBMP {
		format = codec.FormatPNG
	}
	var buf bytes.Buffer
	if err := codec.Encode(&buf, res.Image, format, local.Quality); err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("X-Image-Dimensions", res.Image.DimensionsToString())
	c.Data(http.StatusOK, "image/"+format, buf.Bytes())
}

// Histogram and statistics of a single channel
type channelHistogram struct {
	Bins  []float64         `json:"bins"`
	Stats *stats.BasicStats `json:"stats"`
}

// Returns per-channel histograms and basic statistics of an uploaded image
func postHistogram(c *gin.Context) {
	f, _, err := formImage(c, "image")
	if err != nil {
		abortWithError(c, err)
		return
	}
	channels := make([]channelHistogram, f.Channels)
	for ch, bins := range stats.Histograms(f) {
		channels[ch] = channelHistogram{Bins: bins, Stats: stats.CalcBasicStats(bins)}
	}
	c.JSON(http.StatusOK, gin.H{
		"height":   f.Height,
		"width":    f.Width,
		"channels": channels,
	})
}
