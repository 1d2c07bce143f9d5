// drctool converts meshes between OBJ/STL and compressed .drc geometry.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/drcgeom/internal/config"
	"github.com/Faultbox/drcgeom/internal/drcio"
	"github.com/Faultbox/drcgeom/internal/logger"
	"github.com/Faultbox/drcgeom/internal/registry"
	"github.com/Faultbox/drcgeom/pkg/drc"
	"github.com/Faultbox/drcgeom/pkg/formats"
	"github.com/Faultbox/drcgeom/pkg/geometry"
	"github.com/Faultbox/drcgeom/pkg/scene"
	"github.com/Faultbox/drcgeom/pkg/vecmath"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "encode", "enc":
		cmdEncode(args)
	case "decode", "dec":
		cmdDecode(args)
	case "info":
		cmdInfo(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`drctool - compressed geometry utility

Usage:
  drctool <command> [options]

Commands:
  encode [options] <file.obj|file.stl>...  Encode meshes to .drc
  decode [options] <file.drc> <out>        Decode .drc to .obj or .stl
  info <file.drc>...                       Show encoded geometry details
  config [-save path]                      Print or save the effective config

Encoder options:
  -qp N          Position quantization bits (default 14, 0 disables)
  -qn N          Normal quantization bits (default 10)
  -qt N          Texture coordinate quantization bits (default 12)
  -cl N          Compression level 0-10 (default 0)
  -point-cloud   Encode vertices as a point cloud
  -j N           Parallel conversions
  -o DIR         Output directory

Examples:
  drctool encode -cl 7 bunny.obj
  drctool encode -j 8 -o out/ models/*.stl
  drctool decode bunny.drc bunny.obj
  drctool info bunny.drc`)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	logger.Sync()
	os.Exit(1)
}

// setup loads config for a subcommand and starts logging.
func setup(flags *config.Flags) *config.Config {
	cfg, err := config.Load(flags)
	if err != nil {
		fatal(err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatal(err)
	}
	return cfg
}

func newTable(cfg *config.Config) *registry.Table {
	table, err := registry.New(registry.DRC(cfg.NewReader(), cfg.NewWriter()))
	if err != nil {
		fatal(err)
	}
	return table
}

func outputPath(input, dir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + "." + drcio.Extension
	if dir == "" {
		return filepath.Join(filepath.Dir(input), base)
	}
	return filepath.Join(dir, base)
}

func cmdEncode(args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	cfgFlags := config.RegisterFlags(fs)
	outDir := fs.String("o", "", "Output directory (default: next to input)")
	verbose := fs.Bool("v", false, "Print encoder settings")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: drctool encode [options] <file.obj|file.stl>...")
		os.Exit(1)
	}

	cfg := setup(cfgFlags)
	defer logger.Sync()

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			fatal(err)
		}
	}

	table := newTable(cfg)
	options := ""
	if cfg.Encoder.PointCloud {
		options = drcio.PointCloudToken
	}

	var inBytes, outBytes atomic.Uint64
	var failed atomic.Int32

	var g errgroup.Group
	g.SetLimit(max(cfg.Output.Jobs, 1))
	for _, input := range fs.Args() {
		input := input
		g.Go(func() error {
			flat, err := formats.ParseFile(input)
			if err != nil {
				failed.Add(1)
				logger.Error("parse failed", zap.String("path", input), zap.Error(err))
				return nil
			}

			prim := scene.Triangles
			if cfg.Encoder.PointCloud {
				prim = scene.Points
			}
			group := scene.NewGroup(filepath.Base(input))
			group.AddChild(scene.NewDrawable(prim, flat))

			out := outputPath(input, *outDir)
			res := table.Write(group, out, options)
			if !res.Success() {
				failed.Add(1)
				logger.Error("encode failed", zap.String("path", input), zap.Stringer("status", res.Status), zap.Error(res.Err))
				return nil
			}

			if st, err := os.Stat(input); err == nil {
				inBytes.Add(uint64(st.Size()))
			}
			outBytes.Add(uint64(len(res.Encoded.Data)))
			if *verbose {
				fmt.Printf("%s:\n%s", out, res.Encoded.Report)
			}
			fmt.Printf("%s -> %s (%s, %d points, %d faces)\n",
				input, out, humanize.Bytes(uint64(len(res.Encoded.Data))), res.Encoded.NumPoints, res.Encoded.NumFaces)
			return nil
		})
	}
	_ = g.Wait()

	total := len(fs.Args())
	fmt.Printf("\nEncoded %d/%d files: %s -> %s\n",
		total-int(failed.Load()), total, humanize.Bytes(inBytes.Load()), humanize.Bytes(outBytes.Load()))
	if failed.Load() > 0 {
		logger.Sync()
		os.Exit(1)
	}
}

func cmdDecode(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	cfgFlags := config.RegisterFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: drctool decode [options] <file.drc> <out.obj|out.stl>")
		os.Exit(1)
	}

	cfg := setup(cfgFlags)
	defer logger.Sync()

	input, output := fs.Arg(0), fs.Arg(1)
	res := newTable(cfg).Read(input)
	if !res.Success() {
		fatal(res.Err)
	}

	if err := writeGroup(res.Group, output); err != nil {
		fatal(err)
	}
	fmt.Printf("%s -> %s (%s, %d vertices)\n",
		input, output, res.Decoded.Kind, res.Decoded.Flat.VertexCount())
}

// writeGroup saves the drawables of g. Point clouds can only be written as OBJ.
func writeGroup(g *scene.Group, path string) error {
	if g.NumChildren() == 0 {
		return errors.New("decoded geometry has no positions")
	}
	if tris := g.Collect(); tris.VertexCount() > 0 {
		return formats.WriteFile(path, tris)
	}

	format, err := formats.FormatFromPath(path)
	if err != nil {
		return err
	}
	if format != formats.FormatOBJ {
		return fmt.Errorf("point clouds can only be written as OBJ, not %s", format)
	}
	var buf bytes.Buffer
	if err := formats.WriteOBJPoints(&buf, g.CollectPoints()); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: drctool info <file.drc>...")
		os.Exit(1)
	}

	for i, path := range args {
		if i > 0 {
			fmt.Println()
		}
		if err := printInfo(path); err != nil {
			fatal(err)
		}
	}
}

func printInfo(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	g, info, err := drc.DecodeInfo(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	flat, err := geometry.Reconstruct(g)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Printf("File:     %s\n", path)
	fmt.Printf("Version:  %s\n", info.Header.Version())
	fmt.Printf("Kind:     %s\n", info.Header.Kind)
	fmt.Printf("Method:   %s\n", info.Header.Method)
	fmt.Printf("Size:     %s (body %s)\n", humanize.Bytes(uint64(len(data))), humanize.Bytes(uint64(info.Header.BodyLen)))
	fmt.Printf("Points:   %s\n", humanize.Comma(int64(info.NumPoints)))
	if info.Header.Kind == geometry.KindMesh {
		fmt.Printf("Faces:    %s\n", humanize.Comma(int64(info.NumFaces)))
	}

	b := vecmath.BoundsOf(flat.Positions)
	if !b.Empty {
		size, center := b.Size(), b.Center()
		fmt.Printf("Bounds:   (%g, %g, %g) - (%g, %g, %g)\n", b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
		fmt.Printf("Extent:   %g x %g x %g, center (%g, %g, %g)\n", size.X, size.Y, size.Z, center.X, center.Y, center.Z)
	}

	fmt.Println()
	fmt.Println("Attributes:")
	for _, a := range info.Attributes {
		quant := "float32"
		if a.QuantizationBits > 0 {
			quant = fmt.Sprintf("%d bits", a.QuantizationBits)
		}
		mapping := "explicit map"
		if a.IdentityMap {
			mapping = "identity map"
		}
		fmt.Printf("  %-10s %8s values  %-8s  %s\n", a.Semantic, humanize.Comma(int64(a.NumValues)), quant, mapping)
		if a.Semantic == geometry.Position && a.QuantizationBits > 0 && !b.Empty {
			fmt.Printf("  %-10s max position error %g\n", "", drc.QuantizationStep(float64(b.MaxExtent()), a.QuantizationBits)/2)
		}
	}
	return nil
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	cfgFlags := config.RegisterFlags(fs)
	savePath := fs.String("save", "", "Write the effective config to this path (.yaml or .toml)")
	fs.Parse(args)

	cfg := setup(cfgFlags)
	defer logger.Sync()

	if *savePath != "" {
		if err := cfg.SaveTo(*savePath); err != nil {
			fatal(err)
		}
		fmt.Printf("Saved config to %s\n", *savePath)
		return
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		fatal(err)
	}
	fmt.Print(string(data))
}
