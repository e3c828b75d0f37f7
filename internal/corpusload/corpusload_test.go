package corpusload

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multilgraphwiki/go-wikigraph"
)

func writeCorpus(t *testing.T, articles []wikigraph.CleanedArticle) string {
	fn := filepath.Join(t.TempDir(), "corpus.parquet")
	w := wikigraph.NewCorpusWriter(fn)
	require.NoError(t, w.Write(articles))
	require.NoError(t, w.Close())
	return fn
}

func TestLoad(t *testing.T) {
	fn := writeCorpus(t, []wikigraph.CleanedArticle{
		{Title: "a", Text: "see [[B]] and [[C|c]]"},
		{Title: "b", Text: "#REDIRECT [[A]]", IsRedirect: true},
		{Title: "c", Text: "plain [[File:Sponge.jpg|thumb]]"},
	})

	var mu sync.Mutex
	got := map[string]*Article{}
	ld := &Loader{
		Workers: 3,
		Handle: func(a *Article) {
			mu.Lock()
			defer mu.Unlock()
			got[a.Title] = a
		},
	}
	n, err := ld.Load(context.Background(), fn)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	titles := []string{}
	for k := range got {
		titles = append(titles, k)
	}
	sort.Strings(titles)
	assert.Equal(t, []string{"a", "b", "c"}, titles)
	assert.Equal(t, []string{"B", "C"}, got["a"].Links)
	assert.True(t, got["b"].Redirect)
	assert.Equal(t, []string{"File:Sponge.jpg"}, got["c"].Links)
	assert.Equal(t, []string{"Sponge.jpg"}, got["c"].Files)
	assert.Equal(t, []string{wikigraph.URLForFile("Sponge.jpg")}, got["c"].FileURLs)
	assert.Empty(t, got["a"].Files)
	assert.Empty(t, got["a"].FileURLs)
}

func TestLoadCancelled(t *testing.T) {
	fn := writeCorpus(t, []wikigraph.CleanedArticle{{Title: "a", Text: "x"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ld := &Loader{Workers: 0, Handle: func(*Article) {}}
	_, err := ld.Load(ctx, fn)
	// The only article may or may not make it out before the
	// cancellation is noticed.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestLoadMissing(t *testing.T) {
	ld := &Loader{Handle: func(*Article) {}}
	_, err := ld.Load(context.Background(), filepath.Join(t.TempDir(), "nope.parquet"))
	assert.Error(t, err)
}

func TestLoadPerWorker(t *testing.T) {
	fn := writeCorpus(t, []wikigraph.CleanedArticle{
		{Title: "a", Text: "x"},
		{Title: "b", Text: "y"},
		{Title: "c", Text: "z"},
	})

	var mu sync.Mutex
	started, finished, seen := 0, 0, 0
	ld := &Loader{
		Workers: 2,
		PerWorker: func() (func(*Article), func()) {
			mu.Lock()
			started++
			mu.Unlock()
			return func(*Article) {
					mu.Lock()
					seen++
					mu.Unlock()
				}, func() {
					mu.Lock()
					finished++
					mu.Unlock()
				}
		},
	}
	_, err := ld.Load(context.Background(), fn)
	require.NoError(t, err)
	assert.Equal(t, 2, started)
	assert.Equal(t, 2, finished)
	assert.Equal(t, 3, seen)
}

func TestNewArticleFiles(t *testing.T) {
	a := NewArticle(wikigraph.CleanedArticle{
		Title: "sponge",
		Text:  "[[File:Sea sponge.jpg|thumb|A sponge]] text [[Image:Porifera.png]]",
	})
	assert.Equal(t, []string{"Sea sponge.jpg", "Porifera.png"}, a.Files)
	require.Len(t, a.FileURLs, 2)
	assert.True(t, strings.HasPrefix(a.FileURLs[0], "https://upload.wikimedia.org/wikipedia/commons/"))
	assert.True(t, strings.HasSuffix(a.FileURLs[0], "/Sea_sponge.jpg"), a.FileURLs[0])
	assert.Equal(t, wikigraph.URLForFile("Porifera.png"), a.FileURLs[1])
}
