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
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mlnoga/citra/internal/codec"
	"github.com/mlnoga/citra/internal/img"
	"github.com/mlnoga/citra/internal/ops"
)

func init() { gin.SetMode(gin.TestMode) }

func testRouter() *gin.Engine {
	return NewRouter(ops.NewContext(io.Discard))
}

func pngBytes(t *testing.T, f *img.Image) []byte {
	var buf bytes.Buffer
	if err := codec.Encode(&buf, f, codec.FormatPNG, 0); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// Builds a multipart request with the given image uploads and form values
func multipartRequest(t *testing.T, path string, files map[string][]byte, values map[string]string) *http.Request {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for field, data := range files {
		part, err := w.CreateFormFile(field, field+".png")
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	}
	for k, v := range values {
		w.WriteField(k, v)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func grayImage(t *testing.T, pix ...uint8) *img.Image {
	f, err := img.FromPix(1, len(pix), 1, pix)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestPing(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("pong")) {
		t.Errorf("code=%d body=%s; want 200 pong", w.Code, w.Body.String())
	}
}

func TestGetOps(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ops", nil))
	var res map[string][]string
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, n := range res["operators"] {
		if n == "fuzzyEqualize" {
			found = true
		}
	}
	if !found {
		t.Errorf("operators=%v; want fuzzyEqualize", res["operators"])
	}
	if len(res["tints"]) != 7 {
		t.Errorf("tints=%v; want 7", res["tints"])
	}
}

func TestApplyGamma(t *testing.T) {
	req := multipartRequest(t, "/api/v1/apply",
		map[string][]byte{"image": pngBytes(t, grayImage(t, 0, 64, 128, 255))},
		map[string]string{"ops": `{"type":"gamma","gamma":2}`})
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s; want 200", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type %s; want image/png", ct)
	}
	res, _, err := codec.Decode(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint8{0, 16, 64, 255}
	if string(res.Pix) != string(want) {
		t.Errorf("pix=%v; want %v", res.Pix, want)
	}
}

func TestApplyWithOperand(t *testing.T) {
	req := multipartRequest(t, "/api/v1/apply",
		map[string][]byte{
			"image":   pngBytes(t, grayImage(t, 10, 20)),
			"operand": pngBytes(t, grayImage(t, 5, 30)),
		},
		map[string]string{"ops": `{"type":"arith","op":"absdiff"}`})
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s; want 200", w.Code, w.Body.String())
	}
	res, _, err := codec.Decode(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	if want := []uint8{5, 10}; string(res.Pix) != string(want) {
		t.Errorf("pix=%v; want %v", res.Pix, want)
	}
}

func TestApplyErrors(t *testing.T) {
	image := pngBytes(t, grayImage(t, 1, 2, 3))
	cases := []struct {
		name  string
		files map[string][]byte
		ops   string
		want  int
	}{
		{"no image", nil, `{"type":"invert"}`, http.StatusBadRequest},
		{"bad json", map[string][]byte{"image": image}, `{`, http.StatusBadRequest},
		{"unknown op", map[string][]byte{"image": image}, `{"type":"sharpen"}`, http.StatusBadRequest},
		{"invalid gamma", map[string][]byte{"image": image}, `{"type":"gamma","gamma":-1}`, http.StatusBadRequest},
		{"save", map[string][]byte{"image": image}, `{"type":"seq","steps":[{"type":"save","filePattern":"x.png"}]}`, http.StatusBadRequest},
		{"shape mismatch", map[string][]byte{"image": image, "operand": pngBytes(t, grayImage(t, 1))}, `{"type":"arith"}`, http.StatusBadRequest},
		{"no operand", map[string][]byte{"image": image}, `{"type":"blend"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		testRouter().ServeHTTP(w, multipartRequest(t, "/api/v1/apply", tc.files, map[string]string{"ops": tc.ops}))
		if w.Code != tc.want {
			t.Errorf("%s: code=%d body=%s; want %d", tc.name, w.Code, w.Body.String(), tc.want)
		}
	}
}

func TestHistogram(t *testing.T) {
	req := multipartRequest(t, "/api/v1/histogram",
		map[string][]byte{"image": pngBytes(t, grayImage(t, 0, 0, 255, 7))}, nil)
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d body=%s; want 200", w.Code, w.Body.String())
	}
	var res struct {
		Width    int
		Channels []channelHistogram
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Width != 4 || len(res.Channels) != 1 {
		t.Fatalf("res=%+v; want width 4, one channel", res)
	}
	ch := res.Channels[0]
	if ch.Bins[0] != 2 || ch.Bins[7] != 1 || ch.Bins[255] != 1 {
		t.Errorf("bins 0,7,255 = %v,%v,%v; want 2,1,1", ch.Bins[0], ch.Bins[7], ch.Bins[255])
	}
	if ch.Stats.Min != 0 || ch.Stats.Max != 255 || ch.Stats.Distinct != 3 {
		t.Errorf("stats=%v; want min 0 max 255 distinct 3", ch.Stats)
	}
}
