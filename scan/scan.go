// Package scan drives OCR over a numbered range of scanned page images. Each
// page is cropped to a fixed region of interest, preprocessed, and recognized
// strictly in sequence; a missing file or a failed recognition marks that page
// as failed without aborting the run.
package scan

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/wudi/pagescan/observability"
	"github.com/wudi/pagescan/ocr"
	"github.com/wudi/pagescan/preprocess"
)

// DefaultFilePattern names page image files by page number.
const DefaultFilePattern = "page_%d.png"

// DefaultMinConfidence is the line confidence gate applied when the config
// leaves MinConfidence at zero.
const DefaultMinConfidence = 0.5

// Config describes a batch run over a page range.
type Config struct {
	// Dir is the directory holding the page images.
	Dir string
	// StartPage and EndPage bound the inclusive page range to process.
	StartPage int
	EndPage   int
	// FilePattern is the fmt pattern producing a file name from a page number.
	// Empty means DefaultFilePattern.
	FilePattern string
	// Region is the fixed crop applied to every page before preprocessing.
	// Empty means the full page is recognized.
	Region ocr.Region
	// Languages are hints forwarded to the OCR engine.
	Languages []string
	// DPI is forwarded to the OCR engine; zero means unknown.
	DPI int
	// MinConfidence drops recognized lines at or below this confidence.
	// Zero means DefaultMinConfidence; negative disables filtering.
	MinConfidence float64
	// Metadata carries engine-specific variables applied to every page.
	Metadata map[string]string
}

// Validate reports configuration errors before a run starts.
func (c Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("scan: directory is required")
	}
	if c.StartPage < 1 {
		return fmt.Errorf("scan: start page %d must be positive", c.StartPage)
	}
	if c.EndPage < c.StartPage {
		return fmt.Errorf("scan: end page %d precedes start page %d", c.EndPage, c.StartPage)
	}
	return nil
}

func (c Config) pattern() string {
	if c.FilePattern == "" {
		return DefaultFilePattern
	}
	return c.FilePattern
}

func (c Config) minConfidence() float64 {
	if c.MinConfidence == 0 {
		return DefaultMinConfidence
	}
	if c.MinConfidence < 0 {
		return 0
	}
	return c.MinConfidence
}

// PagePath returns the image path for a page under the configured directory.
func (c Config) PagePath(page int) string {
	return filepath.Join(c.Dir, fmt.Sprintf(c.pattern(), page))
}

// PageText holds the recognized fragments for one page, in reading order.
// Err is set when the page failed (missing file, decode or OCR error).
type PageText struct {
	Page      int
	Fragments []string
	Err       error
}

// Report aggregates the outcome of a run. Pages appear in ascending page
// order and Processed always equals Succeeded plus Failed.
type Report struct {
	Processed int
	Succeeded int
	Failed    int
	Pages     []PageText
}

// Option configures a Runner.
type Option func(*Runner)

// WithEngine sets the OCR engine. The default is ocr.DefaultEngine().
func WithEngine(engine ocr.Engine) Option {
	return func(r *Runner) { r.engine = engine }
}

// WithPreprocessor sets the preprocessing applied to each cropped page.
func WithPreprocessor(p preprocess.Preprocessor) Option {
	return func(r *Runner) { r.pre = p }
}

// WithLogger sets the structured logger for per-page progress.
func WithLogger(log observability.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithTracer sets the tracer used to span each page.
func WithTracer(tracer observability.Tracer) Option {
	return func(r *Runner) { r.tracer = tracer }
}

// Runner executes a configured batch run.
type Runner struct {
	cfg    Config
	engine ocr.Engine
	pre    preprocess.Preprocessor
	log    observability.Logger
	tracer observability.Tracer
}

// NewRunner validates the config and builds a runner.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:    cfg,
		pre:    preprocess.None(),
		log:    observability.NopLogger{},
		tracer: observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.engine == nil {
		r.engine = ocr.DefaultEngine()
	}
	return r, nil
}

// Run processes every page in the configured range, one at a time. It returns
// an error only when the context is canceled; per-page failures are recorded
// in the report and the run continues.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	for page := r.cfg.StartPage; page <= r.cfg.EndPage; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		pt := r.processPage(ctx, page)
		report.Processed++
		if pt.Err != nil {
			report.Failed++
		} else {
			report.Succeeded++
		}
		report.Pages = append(report.Pages, pt)
	}
	r.log.Info("scan finished",
		observability.Int(observability.MetricPageCount, report.Processed),
		observability.Int("succeeded", report.Succeeded),
		observability.Int("failed", report.Failed),
	)
	return report, nil
}

func (r *Runner) processPage(ctx context.Context, page int) PageText {
	ctx, span := r.tracer.StartSpan(ctx, "scan.page")
	defer span.Finish()
	span.SetTag("page", page)

	start := time.Now()
	path := r.cfg.PagePath(page)
	log := r.log.With(observability.Int("page", page), observability.String("file", path))

	if _, err := os.Stat(path); err != nil {
		err = fmt.Errorf("page image missing: %w", err)
		span.SetError(err)
		log.Warn("skipping page", observability.Error("error", err))
		return PageText{Page: page, Err: err}
	}

	fragments, err := r.recognizePage(ctx, page, path)
	if err != nil {
		span.SetError(err)
		log.Error("page failed", observability.Error("error", err))
		return PageText{Page: page, Err: err}
	}

	log.Info("page recognized",
		observability.Int(observability.MetricFragmentCount, len(fragments)),
		observability.Int64(observability.MetricPageTime, time.Since(start).Milliseconds()),
	)
	return PageText{Page: page, Fragments: fragments}
}

func (r *Runner) recognizePage(ctx context.Context, page int, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page image: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode page image: %w", err)
	}
	cropped, err := cropRegion(img, r.cfg.Region)
	if err != nil {
		return nil, err
	}
	processed, err := r.pre.Apply(cropped)
	if err != nil {
		return nil, fmt.Errorf("preprocess (%s): %w", r.pre.Name(), err)
	}

	opts := []ocr.InputOption{ocr.WithLanguages(r.cfg.Languages...)}
	if r.cfg.DPI > 0 {
		opts = append(opts, ocr.WithDPI(r.cfg.DPI))
	}
	if len(r.cfg.Metadata) > 0 {
		opts = append(opts, ocr.WithMetadata(r.cfg.Metadata))
	}
	in, err := ocr.InputFromImage(page, processed, opts...)
	if err != nil {
		return nil, err
	}

	res, err := r.engine.Recognize(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("ocr (%s): %w", r.engine.Name(), err)
	}

	var fragments []string
	for _, line := range res.FilterLines(r.cfg.minConfidence()) {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		fragments = append(fragments, text)
	}
	return fragments, nil
}

// cropRegion cuts the region of interest out of the page, clamped to the page
// bounds. A region entirely outside the page is an error.
func cropRegion(img image.Image, region ocr.Region) (image.Image, error) {
	if region.IsEmpty() {
		return img, nil
	}
	rect := image.Rect(
		int(region.X),
		int(region.Y),
		int(region.X+region.Width),
		int(region.Y+region.Height),
	).Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("region of interest outside page bounds %v", img.Bounds())
	}
	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("page image type %T does not support cropping", img)
	}
	return sub.SubImage(rect), nil
}
