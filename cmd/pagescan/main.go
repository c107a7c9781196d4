package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/wudi/pagescan/export"
	"github.com/wudi/pagescan/ocr"
	"github.com/wudi/pagescan/ocr/tesseract"
	"github.com/wudi/pagescan/preprocess"
	"github.com/wudi/pagescan/preprocess/opencv"
	"github.com/wudi/pagescan/scan"
)

type options struct {
	dir     string
	start   int
	end     int
	roi     string
	out     string
	lang    string
	minConf float64
	dpi     int
	recipe  string
	verbose bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pagescan: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "pagescan: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: pagescan [flags]\n")
		flag.PrintDefaults()
	}
	flag.StringVar(&opts.dir, "dir", "POST_EVT_4", "Directory holding page_<n>.png images")
	flag.IntVar(&opts.start, "start", 2, "First page of the range (inclusive)")
	flag.IntVar(&opts.end, "end", 51, "Last page of the range (inclusive)")
	flag.StringVar(&opts.roi, "roi", "379,154,608,943", "Region of interest as x1,y1,x2,y2; empty recognizes the full page")
	flag.StringVar(&opts.out, "out", "results.csv", "Output CSV path")
	flag.StringVar(&opts.lang, "lang", "eng", "OCR languages, + separated (e.g. eng+kor)")
	flag.Float64Var(&opts.minConf, "min-conf", scan.DefaultMinConfidence, "Drop lines at or below this confidence; negative keeps all")
	flag.IntVar(&opts.dpi, "dpi", 0, "Image DPI hint for the OCR engine (0 = unknown)")
	flag.StringVar(&opts.recipe, "recipe", "opencv", "Preprocessing recipe: none, document, or opencv")
	flag.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(flag.Args(), " "))
	}
	return opts, nil
}

func run(opts options) error {
	region, err := parseROI(opts.roi)
	if err != nil {
		return err
	}
	pre, err := recipeByName(opts.recipe)
	if err != nil {
		return err
	}
	logger, flush, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer flush()

	var languages []string
	if opts.lang != "" {
		languages = strings.Split(opts.lang, "+")
	}

	cfg := scan.Config{
		Dir:           opts.dir,
		StartPage:     opts.start,
		EndPage:       opts.end,
		Region:        region,
		Languages:     languages,
		DPI:           opts.dpi,
		MinConfidence: opts.minConf,
	}
	runner, err := scan.NewRunner(cfg,
		scan.WithEngine(tesseract.NewTesseractEngine()),
		scan.WithPreprocessor(pre),
		scan.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := export.NewWriter(f)
	if err := w.WriteReport(report); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	fmt.Printf("processed %d pages: %d succeeded, %d failed -> %s\n",
		report.Processed, report.Succeeded, report.Failed, opts.out)
	return nil
}

// parseROI parses "x1,y1,x2,y2" into a crop region. An empty string means no
// cropping.
func parseROI(s string) (ocr.Region, error) {
	if s == "" {
		return ocr.Region{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return ocr.Region{}, fmt.Errorf("roi %q: want four comma-separated integers", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return ocr.Region{}, fmt.Errorf("roi %q: %w", s, err)
		}
		if v < 0 {
			return ocr.Region{}, fmt.Errorf("roi %q: coordinates must be non-negative", s)
		}
		vals[i] = v
	}
	if vals[2] <= vals[0] || vals[3] <= vals[1] {
		return ocr.Region{}, fmt.Errorf("roi %q: x2,y2 must exceed x1,y1", s)
	}
	return ocr.RegionFromCorners(vals[0], vals[1], vals[2], vals[3]), nil
}

func recipeByName(name string) (preprocess.Preprocessor, error) {
	switch name {
	case "none":
		return preprocess.None(), nil
	case "document":
		return preprocess.Document(), nil
	case "opencv":
		return opencv.NewRecipe(), nil
	default:
		return nil, fmt.Errorf("unknown recipe %q (want none, document, or opencv)", name)
	}
}
