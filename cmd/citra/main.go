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

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	nl "github.com/mlnoga/citra/internal"
	"github.com/mlnoga/citra/internal/arith"
	"github.com/mlnoga/citra/internal/codec"
	"github.com/mlnoga/citra/internal/ops"
	"github.com/mlnoga/citra/internal/ops/compose"
	"github.com/mlnoga/citra/internal/ops/hist"
	"github.com/mlnoga/citra/internal/ops/tone"
	"github.com/mlnoga/citra/internal/rest"
	"github.com/mlnoga/citra/internal/stats"
	"github.com/mlnoga/citra/internal/tonal"
)

const version = "0.1.0"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var out = flag.String("out", "out.png", "save output to `file`. Suffix selects the format: .png, .jpg, .tif or .bmp. Use %d for the frame number with several inputs")
var log = flag.String("log", "", "save log output to `file`, in addition to stdout")
var opsFile = flag.String("ops", "", "apply the JSON operator pipeline from `file` instead of the pipeline given by flags")
var quality = flag.Int("quality", codec.DefaultQuality, "JPEG output quality, 1..100")
var threads = flag.Int("threads", 0, "maximum number of images to process concurrently, 0=number of CPUs")

var gray = flag.String("gray", "", "reduce to grayscale by `mode` average, lightness or luminance, blank=no op")
var tint = flag.String("tint", "", "apply the named colour tint: yellow, orange, cyan, purple, grey, brown or red, blank=no op")
var invert = flag.Bool("invert", false, "invert intensities")
var logBright = flag.Bool("logBright", false, "apply logarithmic brightness curve")
var gamma = flag.Float64("gamma", 1, "apply gamma correction, 1=no op")
var brightness = flag.Float64("brightness", 0, "add brightness offset in [-255,255], 0=no op")
var contrast = flag.Float64("contrast", 1, "scale contrast around mid gray, 1=no op")
var saturation = flag.Float64("saturation", 1, "scale HSL saturation, 0=gray, 1=no op")
var bits = flag.Int("bits", 8, "reduce to the given bit depth per channel in [1,8], 8=no op")
var equal = flag.String("equalize", "", "equalize histogram: classic or fuzzy, blank=no op")
var fuzzySet = flag.String("fuzzySet", "default", "fuzzy set for fuzzy equalization: default, linguistic or crisp")

var arithOp = flag.String("arith", "", "combine with the operand image using `op` add, sub, mul, div or absdiff, blank=no op")
var operand = flag.String("operand", "", "second operand image `file` for -arith and -blend")
var constOp = flag.String("constOp", "", "combine with -constant using `op` add, sub, mul or div, blank=no op")
var constant = flag.Float64("constant", 0, "constant for -constOp")
var blend = flag.Float64("blend", -1, "blend with the operand image, weighting the input by alpha in [0,1], <0=no op")

var addr = flag.String("addr", ":8080", "listen address for serve")
var chroot = flag.String("chroot", "", "chroot to `dir` before serving, requires root")
var setuid = flag.Int("setuid", -1, "change to given user id before serving, -1=no op")

func main() {
	logWriter := nl.Log
	start := time.Now()
	flag.Usage = func() {
		fmt.Fprintf(logWriter, `Citra Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (stats|apply|serve|ops|legal|version|help) (img0.png ... imgn.png)

Commands:
  stats   Show input image statistics
  apply   Apply the pipeline given by flags or -ops to the input images
  serve   Serve the REST API
  ops     List operators and print the pipeline given by flags as JSON
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
		flag.CommandLine.SetOutput(logWriter)
		flag.PrintDefaults()
	}
	flag.Parse()

	// Initialize logging to file in addition to stdout, if selected
	if *log != "" {
		if err := nl.LogAlsoToFile(*log); err != nil {
			nl.LogFatalf("Unable to open logfile '%s'\n", *log)
		}
	}

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			nl.LogFatal("Could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			nl.LogFatal("Could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}

	c := ops.NewContext(logWriter)
	c.Quality = *quality
	if *threads > 0 {
		c.MaxThreads = *threads
	}

	var err error
	switch args[0] {
	case "stats":
		err = cmdStats(args[1:], c)

	case "apply":
		err = cmdApply(args[1:], c)

	case "serve":
		if err = rest.MakeSandbox(logWriter, *chroot, *setuid); err == nil {
			fmt.Fprintf(logWriter, "Serving REST API on %s\n", *addr)
			err = rest.Serve(*addr, c)
		}

	case "ops":
		err = cmdOps(logWriter)

	case "legal":
		fmt.Fprint(logWriter, legal)

	case "version":
		fmt.Fprintf(logWriter, "Version %s\n", version)
		fmt.Fprintf(logWriter, "CPU %s\n", c.CPU)
		fmt.Fprintf(logWriter, "Memory %d MiB, %d threads\n", c.MemoryMB, c.MaxThreads)

	case "help", "?":
		flag.Usage()

	default:
		fmt.Fprintf(logWriter, "Unknown command '%s'\n\n", args[0])
		flag.Usage()
		nl.LogClose()
		os.Exit(-1)
	}

	elapsed := time.Since(start)
	fmt.Fprintf(logWriter, "\nDone after %v\n", elapsed)

	// Store memory profile if flagged
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			nl.LogFatal("Could not create memory profile: ", err)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
			nl.LogFatal("Could not write allocation profile: ", err)
		}
	}

	if err != nil {
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		nl.LogClose()
		os.Exit(-1)
	}
	nl.LogClose()
}

// Prints per-channel statistics, a gaussian fit of the histogram peak and the colour cast of each input
func cmdStats(fileNames []string, c *ops.Context) error {
	loads, err := ops.NewOpLoadMany(fileNames).MakePromises(nil, c)
	if err != nil {
		return err
	}
	for i := range loads {
		load := loads[i]
		loads[i] = func() (*ops.Frame, error) {
			f, err := load()
			if err != nil {
				return nil, err
			}
			printStats(c.Log, f)
			return f, nil
		}
	}
	_, err = ops.MaterializeAll(loads, c.MaxThreads, true)
	return err
}

var channelNames = [][]string{1: {"Gray"}, 3: {"R", "G", "B"}}

func printStats(w io.Writer, f *ops.Frame) {
	var sb strings.Builder
	for ch, bins := range stats.Histograms(f.Image) {
		s := stats.CalcBasicStats(bins)
		fmt.Fprintf(&sb, "%d: %-4s %s", f.ID, channelNames[f.Image.Channels][ch], s.String())
		if mode, stdDev, err := stats.FitPeak(bins); err == nil {
			fmt.Fprintf(&sb, " Peak %.4g±%.4g", mode, stdDev)
		}
		sb.WriteString("\n")
	}
	if f.Image.Channels == 3 {
		hue, chroma := stats.ColorCast(f.Image)
		fmt.Fprintf(&sb, "%d: Colour cast hue %.1f° chroma %.2f\n", f.ID, hue, chroma)
	}
	fmt.Fprint(w, sb.String()) // single write, as frames print concurrently
}

// Applies the pipeline to all input files and saves the results
func cmdApply(fileNames []string, c *ops.Context) error {
	if *operand != "" {
		o, err := codec.ReadFile(*operand)
		if err != nil {
			return fmt.Errorf("loading operand: %w", err)
		}
		fmt.Fprintf(c.Log, "Loaded %s operand from %s\n", o.DimensionsToString(), *operand)
		c.Operand = o
	}

	pipeline, err := pipelineFromFlags()
	if *opsFile != "" {
		pipeline, err = pipelineFromFile(*opsFile)
	}
	if err != nil {
		return err
	}

	seq := ops.NewOpSequence()
	if len(fileNames) > 0 {
		seq.Append(ops.NewOpLoadMany(fileNames))
	}
	seq.Append(pipeline)
	if *out != "" {
		seq.Append(ops.NewOpForEach(ops.NewOpSave(outPattern(*out, fileNames))))
	}

	m, err := json.MarshalIndent(seq, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Log, "Applying pipeline:\n%s\n", string(m))

	promises, err := seq.MakePromises(nil, c)
	if err != nil {
		return err
	}
	_, err = ops.MaterializeAll(promises, c.MaxThreads, true)
	return err
}

// Inserts a frame number before the suffix if several inputs would otherwise overwrite the same file
func outPattern(out string, fileNames []string) string {
	if strings.Contains(out, "%d") {
		return out
	}
	if len(fileNames) == 1 && !strings.ContainsAny(fileNames[0], "*?[") {
		return out
	}
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + "%d" + ext
}

// Reads a JSON operator pipeline from file
func pipelineFromFile(fileName string) (ops.Operator, error) {
	bs, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	op, err := ops.NewOperatorFromJSON(bs)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fileName, err)
	}
	return op, nil
}

// Assembles the operator pipeline from command line flags
func pipelineFromFlags() (ops.Operator, error) {
	seq := ops.NewOpSequence()
	if *gray != "" {
		seq.Append(tone.NewOpGrayscale(*gray))
	}
	if *tint != "" {
		seq.Append(tone.NewOpTint(*tint))
	}
	if *invert {
		seq.Append(tone.NewOpInvert(true))
	}
	if *logBright {
		seq.Append(tone.NewOpLog(true))
	}
	if *gamma != 1 {
		seq.Append(tone.NewOpGamma(*gamma))
	}
	if *brightness != 0 || *contrast != 1 {
		seq.Append(tone.NewOpBrightnessContrast(*brightness, *contrast))
	}
	if *saturation != 1 {
		seq.Append(tone.NewOpSaturation(*saturation))
	}
	if *bits != 8 {
		seq.Append(tone.NewOpBitDepth(*bits))
	}
	switch *equal {
	case "":
	case "classic":
		seq.Append(hist.NewOpEqualize(true))
	case "fuzzy":
		seq.Append(hist.NewOpFuzzyEqualize(*fuzzySet))
	default:
		return nil, fmt.Errorf("unknown equalization '%s', want classic or fuzzy", *equal)
	}
	if *arithOp != "" {
		seq.Append(compose.NewOpArith(*arithOp, ""))
	}
	if *constOp != "" {
		seq.Append(compose.NewOpArithConst(*constOp, *constant))
	}
	if *blend >= 0 {
		seq.Append(compose.NewOpBlend(*blend, ""))
	}
	return seq, nil
}

// Lists the available operators and parameter names, then prints the flag pipeline as JSON
func cmdOps(w io.Writer) error {
	fmt.Fprintf(w, "Operators:   %s\n", strings.Join(ops.Names(), ", "))
	fmt.Fprintf(w, "Arithmetic:  %s\n", strings.Join(arith.Ops(), ", "))
	fmt.Fprintf(w, "Tints:       %s\n", strings.Join(tonal.TintNames(), ", "))
	fmt.Fprintf(w, "Fuzzy sets:  %s\n", strings.Join(hist.FuzzySetNames(), ", "))

	pipeline, err := pipelineFromFlags()
	if err != nil {
		return err
	}
	m, err := json.MarshalIndent(pipeline, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nPipeline from flags:\n%s\n", string(m))
	return nil
}
