package wikigraph

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize is how many articles GraphBuilder reads at a time.
const DefaultChunkSize = 50000

var interwikiRE = regexp.MustCompile(`^[a-zA-Z]{2,3}:`)

// A RawEdge is a link as found in an article, before redirects are
// resolved.
type RawEdge struct {
	Source string
	Target string
	// FromRedirect is set when Source is a redirect page.
	FromRedirect bool
}

// EdgesFromArticles extracts the links of every article.
//
// Titles are normalized; a link to a section of the same article
// (#Section) stands for the article itself.  Links to other wikis,
// links back to the same article and links from or to excluded titles
// are dropped.
func EdgesFromArticles(articles []CleanedArticle, exclude []*regexp.Regexp) []RawEdge {
	var rv []RawEdge
	for _, a := range articles {
		source := NormalizeTitle(a.Title)
		if source == "" || matchesAny(source, exclude) {
			continue
		}
		for _, link := range FindLinks(a.Text) {
			target := NormalizeTitle(link)
			if len(target) > 0 && target[0] == '#' {
				target = source
			}
			switch {
			case target == "",
				interwikiRE.MatchString(target),
				target == source,
				matchesAny(target, exclude):
				continue
			}
			rv = append(rv, RawEdge{source, target, a.IsRedirect})
		}
	}
	return rv
}

type edgeKey struct{ source, target string }

// ResolveEdges turns raw edges into the final edge set.
//
// Targets are resolved through one redirect lookup; edges that became
// self loops, duplicates (the first one wins), edges out of redirect
// pages and edges to titles that have no outgoing edges of their own
// are then dropped, in that order.
func ResolveEdges(raw []RawEdge, redirects RedirectMap) []Edge {
	seen := make(map[edgeKey]struct{}, len(raw))
	resolved := make([]RawEdge, 0, len(raw))
	for _, e := range raw {
		e.Target = redirects.Resolve(e.Target)
		if e.Source == e.Target {
			continue
		}
		k := edgeKey{e.Source, e.Target}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if e.FromRedirect {
			continue
		}
		resolved = append(resolved, e)
	}

	sources := make(map[string]struct{})
	for _, e := range resolved {
		sources[e.Source] = struct{}{}
	}

	rv := make([]Edge, 0, len(resolved))
	for _, e := range resolved {
		if _, ok := sources[e.Target]; !ok {
			continue
		}
		if e.Source == "" || e.Target == "" {
			continue
		}
		rv = append(rv, Edge{e.Source, e.Target})
	}
	return rv
}

// Relabel replaces titles with dense ids.  Ids are handed out in
// sorted title order starting from 0, so the same edge set always
// gets the same ids.
func Relabel(edges []Edge) ([]NumericEdge, []NodeLabel) {
	ids := map[string]int64{}
	for _, e := range edges {
		ids[e.Source] = 0
		ids[e.Target] = 0
	}
	labels := make([]string, 0, len(ids))
	for l := range ids {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	index := make([]NodeLabel, len(labels))
	for i, l := range labels {
		ids[l] = int64(i)
		index[i] = NodeLabel{int64(i), l}
	}

	rv := make([]NumericEdge, len(edges))
	for i, e := range edges {
		rv[i] = NumericEdge{ids[e.Source], ids[e.Target]}
	}
	return rv, index
}

// GraphBuilder builds the link graph out of an article corpus.
type GraphBuilder struct {
	// Titles to leave out of the graph.
	Exclude []*regexp.Regexp
	// Where the redirect map is cached.  Required.
	Store RedirectStore
	// Key the redirect map is cached under, typically the
	// language code.
	CacheKey string
	// Number of goroutines extracting links.
	Workers int
	// Articles per chunk of work; DefaultChunkSize if zero.
	ChunkSize int
	// Replace titles with numeric ids in the output.
	Relabel bool
	Logger  *log.Logger
}

// GraphResult describes a finished graph.
type GraphResult struct {
	Articles   int64
	RawEdges   int
	Redirects  int
	Edges      int
	Nodes      int
	EdgesFile  string
	IndexFile  string
	CacheHit   bool
	Duration   time.Duration
	Redirected RedirectMap
}

func (g *GraphBuilder) logger() *log.Logger {
	if g.Logger == nil {
		return log.Default()
	}
	return g.Logger
}

// RawEdgesFromCorpus runs the per-article link extraction over a whole
// corpus, a chunk at a time and several chunks in parallel.  Edges come
// back in corpus order regardless of the number of workers.
func (g *GraphBuilder) RawEdgesFromCorpus(ctx context.Context, corpus *CorpusReader) ([]RawEdge, error) {
	chunkSize := g.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	workers := g.Workers
	if workers < 1 {
		workers = 1
	}

	var results []*[]RawEdge
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for {
		if err := egctx.Err(); err != nil {
			break
		}
		articles, err := corpus.Next(chunkSize)
		if err == io.EOF {
			break
		}
		if err != nil {
			eg.Wait()
			return nil, err
		}
		slot := new([]RawEdge)
		results = append(results, slot)
		eg.Go(func() error {
			*slot = EdgesFromArticles(articles, g.Exclude)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := 0
	for _, r := range results {
		n += len(*r)
	}
	rv := make([]RawEdge, 0, n)
	for _, r := range results {
		rv = append(rv, *r...)
	}
	return rv, nil
}

// redirectMap loads the cached redirect map or builds and caches a new
// one.
func (g *GraphBuilder) redirectMap(ctx context.Context, raw []RawEdge) (RedirectMap, bool, error) {
	m, ok, err := g.Store.Load(ctx, g.CacheKey)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return m, true, nil
	}
	m = BuildRedirectMap(raw)
	if err := g.Store.Save(ctx, g.CacheKey, m); err != nil {
		return nil, false, err
	}
	return m, false, nil
}

// Build reads the corpus at corpusPath and writes the graph into
// graphDir, named after lang.
func (g *GraphBuilder) Build(ctx context.Context, corpusPath, graphDir, lang string) (GraphResult, error) {
	if g.Store == nil {
		return GraphResult{}, errors.New("graph builder has no redirect store")
	}
	start := time.Now()
	l := g.logger().With("lang", lang)

	if err := os.MkdirAll(graphDir, 0777); err != nil {
		return GraphResult{}, errors.Wrap(err, "creating graph dir")
	}

	corpus, err := OpenCorpus(corpusPath)
	if err != nil {
		return GraphResult{}, err
	}
	rv := GraphResult{Articles: corpus.NumArticles()}
	raw, err := g.RawEdgesFromCorpus(ctx, corpus)
	corpus.Close()
	if err != nil {
		return GraphResult{}, err
	}
	rv.RawEdges = len(raw)
	l.Info("Extracted links", "articles", humanize.Comma(rv.Articles),
		"links", humanize.Comma(int64(rv.RawEdges)))

	redirects, hit, err := g.redirectMap(ctx, raw)
	if err != nil {
		return GraphResult{}, err
	}
	rv.CacheHit, rv.Redirects, rv.Redirected = hit, len(redirects), redirects
	l.Info("Redirect map ready", "redirects", humanize.Comma(int64(len(redirects))),
		"cached", hit)

	edges := ResolveEdges(raw, redirects)
	raw = nil
	rv.Edges = len(edges)

	rv.EdgesFile = filepath.Join(graphDir, lang+"_graph_wiki_cleaned.parquet")
	if g.Relabel {
		numeric, index := Relabel(edges)
		rv.Nodes = len(index)
		rv.IndexFile = filepath.Join(graphDir, lang+"_graph_node_index.parquet")
		if err := WriteNodeIndex(rv.IndexFile, index); err != nil {
			return GraphResult{}, err
		}
		err = WriteNumericEdges(rv.EdgesFile, numeric)
	} else {
		rv.Nodes = countNodes(edges)
		err = WriteEdges(rv.EdgesFile, edges)
	}
	if err != nil {
		return GraphResult{}, err
	}

	rv.Duration = time.Since(start)
	l.Info("Graph written", "file", rv.EdgesFile,
		"edges", humanize.Comma(int64(rv.Edges)),
		"nodes", humanize.Comma(int64(rv.Nodes)),
		"took", rv.Duration)
	return rv, nil
}

func countNodes(edges []Edge) int {
	nodes := map[string]struct{}{}
	for _, e := range edges {
		nodes[e.Source] = struct{}{}
		nodes[e.Target] = struct{}{}
	}
	return len(nodes)
}
