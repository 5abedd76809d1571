// Package batch looks up many barcodes at once and reports one JSON line per
// distinct barcode.
package batch

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DipamJha/foodPro/internal/domain/product"
	"github.com/DipamJha/foodPro/internal/domain/scan"
)

// Options tunes a batch run.
type Options struct {
	// Concurrency bounds in-flight lookups. Defaults to 4.
	Concurrency int
	// ExpectedItems sizes the duplicate filter. Defaults to 100000.
	ExpectedItems uint
	// FalsePositiveRate of the duplicate filter. Defaults to 1e-6.
	FalsePositiveRate float64
}

func (o *Options) setDefaults() {
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.ExpectedItems == 0 {
		o.ExpectedItems = 100_000
	}
	if o.FalsePositiveRate <= 0 || o.FalsePositiveRate >= 1 {
		o.FalsePositiveRate = 1e-6
	}
}

// Result is the outcome of one barcode lookup.
type Result struct {
	Barcode string
	Outcome product.Outcome
	// Message is the text the result panel would show; empty when found.
	Message string
	Product *product.Record
}

// Summary counts results by outcome.
type Summary struct {
	Total      int
	Duplicates int
	Outcomes   map[product.Outcome]int
}

// Open opens path for reading, transparently decompressing .gz files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := pgzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "create gzip reader for %s", path)
	}
	return &gzipFile{Reader: gz, file: f}, nil
}

type gzipFile struct {
	*pgzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	gzErr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return gzErr
}

// ReadBarcodes reads one barcode per line, trimming whitespace and skipping
// blank lines and repeats. Duplicate detection is probabilistic: with the
// configured false positive rate a distinct barcode may be dropped.
func ReadBarcodes(r io.Reader, opts Options) ([]string, int, error) {
	opts.setDefaults()
	seen := bloom.NewWithEstimates(opts.ExpectedItems, opts.FalsePositiveRate)

	var (
		barcodes   []string
		duplicates int
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		code := strings.TrimSpace(scanner.Text())
		if code == "" {
			continue
		}
		if seen.TestOrAddString(code) {
			duplicates++
			continue
		}
		barcodes = append(barcodes, code)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "scan barcodes")
	}
	return barcodes, duplicates, nil
}

// Lookup fetches every barcode concurrently. Results keep input order.
// Individual failures become results; only cancellation aborts the run.
func Lookup(ctx context.Context, fetcher product.Fetcher, barcodes []string, opts Options) ([]Result, error) {
	opts.setDefaults()
	lg := zctx.From(ctx)

	results := make([]Result, len(barcodes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, code := range barcodes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := fetcher.Lookup(ctx, code)
			res := Result{Barcode: code, Outcome: product.OutcomeOf(err)}
			if err != nil {
				res.Message = scan.ErrorMessage(err)
				if res.Outcome != product.OutcomeNotFound {
					lg.Warn("Product fetch failed", zap.String("barcode", code), zap.Error(err))
				}
			} else {
				res.Product = rec
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "lookup barcodes")
	}
	return results, nil
}

// Run reads barcodes from r, looks them up and writes one JSON object per
// line to w.
func Run(ctx context.Context, fetcher product.Fetcher, r io.Reader, w io.Writer, opts Options) (*Summary, error) {
	barcodes, duplicates, err := ReadBarcodes(r, opts)
	if err != nil {
		return nil, err
	}
	zctx.From(ctx).Info("Looking up barcodes",
		zap.Int("barcodes", len(barcodes)),
		zap.Int("duplicates", duplicates),
	)

	results, err := Lookup(ctx, fetcher, barcodes, opts)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Total:      len(results),
		Duplicates: duplicates,
		Outcomes:   make(map[product.Outcome]int),
	}
	bw := bufio.NewWriter(w)
	for _, res := range results {
		summary.Outcomes[res.Outcome]++
		if err := writeResult(bw, res); err != nil {
			return nil, err
		}
	}
	if err := bw.Flush(); err != nil {
		return nil, errors.Wrap(err, "flush results")
	}
	return summary, nil
}

func writeResult(w io.Writer, res Result) error {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("barcode", func(e *jx.Encoder) { e.Str(res.Barcode) })
		e.Field("outcome", func(e *jx.Encoder) { e.Str(string(res.Outcome)) })
		if res.Message != "" {
			e.Field("message", func(e *jx.Encoder) { e.Str(res.Message) })
		}
		if res.Product != nil && len(res.Product.Raw) > 0 {
			e.Field("product", func(e *jx.Encoder) { e.Raw(res.Product.Raw) })
		}
	})
	if _, err := w.Write(append(e.Bytes(), '\n')); err != nil {
		return errors.Wrapf(err, "write result for %s", res.Barcode)
	}
	return nil
}
