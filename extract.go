package wikigraph

import (
	"context"
	"io"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of pages an Extractor hands to a
// worker at a time.
const DefaultBatchSize = 10000

// Extractor turns a stream of raw pages into a cleaned article corpus.
type Extractor struct {
	// Pages per batch; DefaultBatchSize if zero.
	BatchSize int
	// Number of batches cleaned concurrently.  At most one means
	// everything runs on the calling goroutine.
	Workers int
	// Start of the trailing sections to cut off.  May be nil.
	Trailing *regexp.Regexp
	// Titles of pages to leave out.
	Exclude []*regexp.Regexp
	// Lowercase markers a redirect page starts with.
	RedirectKeywords []string

	Logger *log.Logger
	// Log progress every this many pages.  Zero disables it.
	ReportEvery int64
}

// Stats describes an extraction run.
type Stats struct {
	PagesRead    int64
	PagesWritten int64
	Redirects    int64
	Batches      int
	// ParseErr is the error that cut the input short, if any.  The
	// pages read up to that point are in the corpus.
	ParseErr error
	Duration time.Duration
}

func (e *Extractor) logger() *log.Logger {
	if e.Logger == nil {
		return log.Default()
	}
	return e.Logger
}

func (e *Extractor) transform(pages []RawPage) []CleanedArticle {
	return TransformBatch(pages, e.Trailing, e.Exclude, e.RedirectKeywords)
}

// extraction is the state of a single Run.
type extraction struct {
	*Extractor
	ctx   context.Context
	out   *CorpusWriter
	stats *Stats
	// Results of batches still being worked on, oldest first.
	pending []chan []CleanedArticle
	workers errgroup.Group
}

func (x *extraction) write(articles []CleanedArticle) error {
	for _, a := range articles {
		if a.IsRedirect {
			x.stats.Redirects++
		}
	}
	return x.out.Write(articles)
}

// drain writes pending results until at most keep are left.
func (x *extraction) drain(keep int) error {
	for len(x.pending) > keep {
		articles := <-x.pending[0]
		x.pending = x.pending[1:]
		if err := x.write(articles); err != nil {
			return err
		}
	}
	return nil
}

func (x *extraction) submit(pages []RawPage) error {
	if err := x.ctx.Err(); err != nil {
		return err
	}
	x.stats.Batches++
	if x.Workers <= 1 {
		return x.write(x.transform(pages))
	}
	if err := x.drain(x.Workers - 1); err != nil {
		return err
	}
	ch := make(chan []CleanedArticle, 1)
	x.pending = append(x.pending, ch)
	x.workers.Go(func() error {
		ch <- x.transform(pages)
		return nil
	})
	return nil
}

func (x *extraction) run(src PageSource) error {
	batchSize := x.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	l := x.logger()

	start := time.Now()
	prev := start
	batch := make([]RawPage, 0, batchSize)
	var readErr error
	for {
		p, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !malformed(err) {
				readErr = err
				break
			}
			x.stats.ParseErr = err
			l.Warn("Input ended early, keeping what was read",
				"pages", humanize.Comma(x.stats.PagesRead), "err", err)
			break
		}
		x.stats.PagesRead++
		batch = append(batch, p)
		if len(batch) >= batchSize {
			if err := x.submit(batch); err != nil {
				return err
			}
			batch = make([]RawPage, 0, batchSize)
		}

		if x.ReportEvery > 0 && x.stats.PagesRead%x.ReportEvery == 0 {
			now := time.Now()
			d := now.Sub(prev)
			l.Infof("Processed %s pages total (%.2f/s)",
				humanize.Comma(x.stats.PagesRead), float64(x.ReportEvery)/d.Seconds())
			prev = now
		}
	}
	if len(batch) > 0 {
		if err := x.submit(batch); err != nil {
			return err
		}
	}
	if err := x.drain(0); err != nil {
		return err
	}
	return readErr
}

// Run reads src to the end and writes the cleaned articles to the
// corpus file out.
//
// Malformed or truncated xml is not an error: whatever was read
// before the break is written out and the problem is reported in
// Stats.ParseErr.  Failures reading the input, failures writing the
// output and cancellation of ctx are returned.  The pages read before
// a read failure are still written and the output file is closed, so
// it stays readable unless writing it failed.
func (e *Extractor) Run(ctx context.Context, src PageSource, out string) (Stats, error) {
	start := time.Now()
	var stats Stats
	x := &extraction{
		Extractor: e,
		ctx:       ctx,
		out:       NewCorpusWriter(out),
		stats:     &stats,
	}

	err := x.run(src)
	x.workers.Wait()
	if cerr := x.out.Close(); err == nil {
		err = cerr
	}
	stats.PagesWritten = x.out.Written()
	stats.Duration = time.Since(start)
	if err != nil {
		return stats, err
	}

	e.logger().Info("Extraction done", "file", out,
		"read", humanize.Comma(stats.PagesRead),
		"written", humanize.Comma(stats.PagesWritten),
		"redirects", humanize.Comma(stats.Redirects),
		"took", stats.Duration)
	return stats, nil
}
