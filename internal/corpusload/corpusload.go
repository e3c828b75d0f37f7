// Package corpusload feeds the articles of a corpus file to a pool of
// workers pushing them into some store.
package corpusload

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/multilgraphwiki/go-wikigraph"
)

// An Article is a corpus record as handed to a store.
type Article struct {
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Redirect bool     `json:"redirect,omitempty"`
	Links    []string `json:"links,omitempty"`
	Files    []string `json:"files,omitempty"`
	// Commons URLs of Files, in the same order.
	FileURLs []string `json:"file_urls,omitempty"`
}

// NewArticle gets the stored form of a corpus record.
func NewArticle(a wikigraph.CleanedArticle) *Article {
	rv := &Article{
		Title:    a.Title,
		Text:     a.Text,
		Redirect: a.IsRedirect,
		Links:    wikigraph.FindLinks(a.Text),
		Files:    wikigraph.FindFiles(a.Text),
	}
	for _, f := range rv.Files {
		rv.FileURLs = append(rv.FileURLs, wikigraph.URLForFile(f))
	}
	return rv
}

// Loader reads a corpus and runs Handle on every article.
type Loader struct {
	Workers     int
	ReportEvery int64
	Logger      *log.Logger
	// Handle stores one article.  It is called concurrently from
	// Workers goroutines and should log its own failures.
	Handle func(*Article)
	// PerWorker, if set, is used instead of Handle for stores that
	// want state of their own in every worker.  It is called once per
	// worker; finish runs after the worker's last article.
	PerWorker func() (handle func(*Article), finish func())
}

func (ld *Loader) worker(ch <-chan *Article) {
	handle, finish := ld.Handle, func() {}
	if ld.PerWorker != nil {
		handle, finish = ld.PerWorker()
	}
	defer finish()
	for a := range ch {
		handle(a)
	}
}

// Load goes through the corpus in filename and returns the number of
// articles handed out.
func (ld *Loader) Load(ctx context.Context, filename string) (int64, error) {
	l := ld.Logger
	if l == nil {
		l = log.Default()
	}
	workers := ld.Workers
	if workers < 1 {
		workers = 1
	}

	corpus, err := wikigraph.OpenCorpus(filename)
	if err != nil {
		return 0, err
	}
	defer corpus.Close()
	l.Info("Loading corpus", "file", filename,
		"articles", humanize.Comma(corpus.NumArticles()))

	var wg sync.WaitGroup
	ch := make(chan *Article, 1000)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ld.worker(ch)
		}()
	}

	articles := int64(0)
	start := time.Now()
	prev := start
	err = func() error {
		defer close(ch)
		for {
			batch, err := corpus.Next(1000)
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			for _, a := range batch {
				select {
				case ch <- NewArticle(a):
				case <-ctx.Done():
					return ctx.Err()
				}
				articles++
				if ld.ReportEvery > 0 && articles%ld.ReportEvery == 0 {
					now := time.Now()
					d := now.Sub(prev)
					l.Infof("Processed %s articles total (%.2f/s)",
						humanize.Comma(articles), float64(ld.ReportEvery)/d.Seconds())
					prev = now
				}
			}
		}
	}()
	wg.Wait()

	d := time.Since(start)
	l.Info("Loading ended", "articles", humanize.Comma(articles), "took", d, "err", err)
	return articles, err
}
