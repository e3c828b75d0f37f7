package wikigraph

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageList is a PageSource handing out a fixed list of pages and then
// err, or io.EOF if err is nil.
type pageList struct {
	pages []RawPage
	err   error
}

func (p *pageList) Next() (RawPage, error) {
	if len(p.pages) == 0 {
		if p.err != nil {
			return RawPage{}, p.err
		}
		return RawPage{}, io.EOF
	}
	rv := p.pages[0]
	p.pages = p.pages[1:]
	return rv, nil
}

func numberedPages(n int) []RawPage {
	rv := make([]RawPage, n)
	for i := range rv {
		rv[i] = RawPage{
			Title: fmt.Sprintf("Page_%03d", i),
			Text:  fmt.Sprintf("{{stub}}'''Page %d''' links to [[Page %d]]<ref>x</ref>", i, i+1),
		}
	}
	return rv
}

func readCorpus(t *testing.T, fn string) []CleanedArticle {
	c, err := OpenCorpus(fn)
	require.NoError(t, err)
	defer c.Close()

	var rv []CleanedArticle
	for {
		batch, err := c.Next(7)
		if err == io.EOF {
			return rv
		}
		require.NoError(t, err)
		rv = append(rv, batch...)
	}
}

func TestExtractorOrder(t *testing.T) {
	pages := numberedPages(103)
	for _, workers := range []int{0, 1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "corpus.parquet")
			x := &Extractor{BatchSize: 10, Workers: workers, Trailing: enTrailing}
			stats, err := x.Run(context.Background(), &pageList{pages: pages}, out)
			require.NoError(t, err)
			assert.NoError(t, stats.ParseErr)
			assert.EqualValues(t, 103, stats.PagesRead)
			assert.EqualValues(t, 103, stats.PagesWritten)
			assert.Equal(t, 11, stats.Batches)

			got := readCorpus(t, out)
			require.Len(t, got, 103)
			for i, a := range got {
				assert.Equal(t, fmt.Sprintf("page %03d", i), a.Title)
				assert.Equal(t, fmt.Sprintf("'''Page %d''' links to [[Page %d]]", i, i+1), a.Text)
			}
		})
	}
}

func TestExtractorFilters(t *testing.T) {
	exclude, err := CompilePatterns([]string{`^category:`})
	require.NoError(t, err)
	src := &pageList{pages: []RawPage{
		{"Sponge", "'''Sponges''' are [[animal]]s"},
		{"Category:Animals", "[[Sponge]]"},
		{"Porifera", "#REDIRECT [[Sponge]]"},
	}}

	out := filepath.Join(t.TempDir(), "corpus.parquet")
	x := &Extractor{Workers: 2, Exclude: exclude, RedirectKeywords: []string{"#redirect"}}
	stats, err := x.Run(context.Background(), src, out)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.PagesRead)
	assert.EqualValues(t, 2, stats.PagesWritten)
	assert.EqualValues(t, 1, stats.Redirects)
	assert.Equal(t, []CleanedArticle{
		{"sponge", "'''Sponges''' are [[animal]]s", false},
		{"porifera", "#REDIRECT [[Sponge]]", true},
	}, readCorpus(t, out))
}

func TestExtractorEmpty(t *testing.T) {
	tests := []struct {
		name  string
		pages []RawPage
	}{
		{"no pages", nil},
		{"all filtered", []RawPage{{"Category:A", "x"}, {"Category:B", "y"}}},
	}
	exclude, err := CompilePatterns([]string{`^category:`})
	require.NoError(t, err)

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "corpus.parquet")
			x := &Extractor{Workers: 3, Exclude: exclude}
			stats, err := x.Run(context.Background(), &pageList{pages: test.pages}, out)
			require.NoError(t, err)
			assert.Zero(t, stats.PagesWritten)

			c, err := OpenCorpus(out)
			require.NoError(t, err)
			defer c.Close()
			assert.Zero(t, c.NumArticles())
			_, err = c.Next(10)
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestExtractorPartialInput(t *testing.T) {
	boom := fmt.Errorf("reading dump: %w", &xml.SyntaxError{Msg: "unexpected EOF", Line: 40})
	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "corpus.parquet")
			x := &Extractor{BatchSize: 4, Workers: workers}
			stats, err := x.Run(context.Background(),
				&pageList{pages: numberedPages(10), err: boom}, out)
			require.NoError(t, err)
			assert.Equal(t, boom, stats.ParseErr)
			assert.EqualValues(t, 10, stats.PagesRead)
			assert.Len(t, readCorpus(t, out), 10)
		})
	}
}

func TestExtractorTruncatedDump(t *testing.T) {
	cut := strings.Index(sampleDump, "<title>Porifera") + 10
	out := filepath.Join(t.TempDir(), "corpus.parquet")
	x := &Extractor{}
	stats, err := x.Run(context.Background(), NewParser(strings.NewReader(sampleDump[:cut])), out)
	require.NoError(t, err)
	assert.Error(t, stats.ParseErr)
	got := readCorpus(t, out)
	require.Len(t, got, 1)
	assert.Equal(t, "sponge", got[0].Title)
}

// failingReader hands out r and then fails with err instead of io.EOF.
type failingReader struct {
	r   io.Reader
	err error
}

func (f *failingReader) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	if err == io.EOF {
		err = f.err
	}
	return n, err
}

func TestExtractorReadError(t *testing.T) {
	reset := errors.New("connection reset by peer")
	cut := strings.Index(sampleDump, "<title>Porifera") + 10
	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "corpus.parquet")
			src := NewParser(&failingReader{strings.NewReader(sampleDump[:cut]), reset})
			x := &Extractor{BatchSize: 1, Workers: workers}
			stats, err := x.Run(context.Background(), src, out)
			assert.ErrorIs(t, err, reset)
			assert.NoError(t, stats.ParseErr)
			assert.EqualValues(t, 1, stats.PagesWritten)

			got := readCorpus(t, out)
			require.Len(t, got, 1)
			assert.Equal(t, "sponge", got[0].Title)
		})
	}
}

func TestExtractorSourceError(t *testing.T) {
	boom := errors.New("bzip2: corrupted input")
	out := filepath.Join(t.TempDir(), "corpus.parquet")
	x := &Extractor{BatchSize: 4, Workers: 2}
	stats, err := x.Run(context.Background(),
		&pageList{pages: numberedPages(6), err: boom}, out)
	assert.Equal(t, boom, err)
	assert.NoError(t, stats.ParseErr)
	assert.Len(t, readCorpus(t, out), 6)
}

func TestExtractorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := filepath.Join(t.TempDir(), "corpus.parquet")
	x := &Extractor{BatchSize: 2, Workers: 2}
	_, err := x.Run(ctx, &pageList{pages: numberedPages(10)}, out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractorBadOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "missing", "corpus.parquet")
	x := &Extractor{}
	_, err := x.Run(context.Background(), &pageList{pages: numberedPages(3)}, out)
	assert.Error(t, err)
}
