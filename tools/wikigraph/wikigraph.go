// Turn a wikipedia dump into a cleaned article corpus and a link graph.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/redis/go-redis/v9"

	"github.com/multilgraphwiki/go-wikigraph"
	"github.com/multilgraphwiki/go-wikigraph/internal/clilog"
	"github.com/multilgraphwiki/go-wikigraph/internal/envutil"
)

type options struct {
	dump, index string
	lang, base  string
	settings    string
	redis       string
	graph       bool
	numeric     bool
	workers     int
	batch       int
	cpus        int
	verbose     bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.dump, "dump", "", "Dump to extract (.xml.bz2, .xml.gz, .xml or s3://bucket/key)")
	flag.StringVar(&o.index, "index", "", "Index of a multistream -dump")
	flag.StringVar(&o.lang, "lang", envutil.String("WIKIGRAPH_LANG", "en"), "Language of the dump")
	flag.StringVar(&o.base, "base", envutil.String("WIKIGRAPH_BASE_DIR", "."), "Base output directory")
	flag.StringVar(&o.settings, "settings", envutil.String("WIKIGRAPH_SETTINGS", ""),
		"Language settings yaml (built in settings if empty)")
	flag.StringVar(&o.redis, "redis", envutil.String("REDIS_ADDR", ""),
		"Cache redirect maps in this redis instead of the graph dir")
	flag.BoolVar(&o.graph, "graph", false, "Build the link graph from the corpus")
	flag.BoolVar(&o.numeric, "numeric", false, "Relabel graph nodes with numeric ids")
	flag.IntVar(&o.workers, "workers", envutil.Int("WIKIGRAPH_WORKERS", runtime.NumCPU()),
		"Number of workers")
	flag.IntVar(&o.batch, "batch", envutil.Int("WIKIGRAPH_BATCH_SIZE", wikigraph.DefaultBatchSize),
		"Pages per extraction batch")
	flag.IntVar(&o.cpus, "cpus", runtime.GOMAXPROCS(0), "Number of CPUS to utilize")
	flag.BoolVar(&o.verbose, "v", envutil.Bool("DEBUG", false), "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s -dump enwiki-pages-articles.xml.bz2 [-graph] [opts]\n"+
			"  %s -graph [opts]\n\nOptions:\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	o.lang = strings.ToLower(o.lang)
	return o
}

func loadSettings(fn string) (wikigraph.Settings, error) {
	if fn == "" {
		return wikigraph.DefaultSettings(), nil
	}
	return wikigraph.LoadSettings(fn)
}

// openSource gets the pages of the dump, and something to release
// once done with them.
func openSource(ctx context.Context, l *log.Logger, o options) (wikigraph.PageSource, io.Closer, error) {
	if o.index != "" {
		p, err := wikigraph.NewIndexedParser(o.index, o.dump, o.workers)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	}

	var r io.ReadCloser
	var err error
	if isS3(o.dump) {
		r, err = openS3(ctx, o.dump)
	} else {
		r, err = wikigraph.OpenDump(o.dump)
	}
	if err != nil {
		return nil, nil, err
	}
	p := wikigraph.NewParser(r)
	return &siteInfoLogger{p: p, l: l}, r, nil
}

// siteInfoLogger logs the dump's site info once the parser has seen it.
type siteInfoLogger struct {
	p      *wikigraph.Parser
	l      *log.Logger
	logged bool
}

func (s *siteInfoLogger) Next() (wikigraph.RawPage, error) {
	page, err := s.p.Next()
	if !s.logged && err == nil {
		s.logged = true
		s.l.Info("Got site info", "site", s.p.SiteInfo.SiteName,
			"base", s.p.SiteInfo.Base, "generator", s.p.SiteInfo.Generator)
	}
	return page, err
}

func extract(ctx context.Context, l *log.Logger, o options, lang *wikigraph.Language,
	layout wikigraph.Layout) error {

	if err := os.MkdirAll(layout.OutputDir(), 0777); err != nil {
		return err
	}
	src, closer, err := openSource(ctx, l, o)
	if err != nil {
		return err
	}
	defer closer.Close()

	x := &wikigraph.Extractor{
		BatchSize:        o.batch,
		Workers:          o.workers,
		Trailing:         lang.Trailing,
		Exclude:          lang.Exclude,
		RedirectKeywords: lang.RedirectKeywords,
		Logger:           l,
		ReportEvery:      int64(o.batch),
	}
	stats, err := x.Run(ctx, src, layout.CorpusPath())
	if err != nil {
		return err
	}
	if stats.ParseErr != nil {
		l.Warn("Corpus is partial", "err", stats.ParseErr)
	}
	if st, err := os.Stat(layout.CorpusPath()); err == nil {
		l.Info("Corpus written", "file", layout.CorpusPath(),
			"size", humanize.Bytes(uint64(st.Size())),
			"rate", fmt.Sprintf("%.2f p/s", float64(stats.PagesRead)/stats.Duration.Seconds()))
	}
	return nil
}

func buildGraph(ctx context.Context, l *log.Logger, o options, lang *wikigraph.Language,
	layout wikigraph.Layout) error {

	var store wikigraph.RedirectStore = wikigraph.FileStore{Dir: layout.GraphDir()}
	if o.redis != "" {
		client := redis.NewClient(&redis.Options{Addr: o.redis})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		store = wikigraph.RedisStore{Client: client}
	}

	g := &wikigraph.GraphBuilder{
		Exclude:  lang.Exclude,
		Store:    store,
		CacheKey: layout.Lang,
		Workers:  o.workers,
		Relabel:  o.numeric,
		Logger:   l,
	}
	_, err := g.Build(ctx, layout.CorpusPath(), layout.GraphDir(), layout.Lang)
	return err
}

func main() {
	envutil.Load()
	o := parseFlags()
	runtime.GOMAXPROCS(o.cpus)
	l := clilog.New("wikigraph", o.verbose)

	if o.dump == "" && !o.graph {
		flag.Usage()
		os.Exit(1)
	}
	if o.index != "" && isS3(o.dump) {
		l.Fatal("Multistream dumps must be local files")
	}

	settings, err := loadSettings(o.settings)
	if err != nil {
		l.Fatal("Error loading settings", "err", err)
	}
	lang, err := settings.Lookup(o.lang)
	if err != nil {
		l.Fatal("Error compiling settings", "lang", o.lang, "err", err)
	}
	if _, ok := settings[o.lang]; !ok {
		l.Warn("No settings for language, using fallback", "lang", o.lang,
			"fallback", wikigraph.FallbackLanguage)
	}
	layout := wikigraph.Layout{Base: o.base, Lang: o.lang}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if o.dump != "" {
		if err := extract(ctx, l, o, lang, layout); err != nil {
			l.Fatal("Error extracting corpus", "err", err)
		}
	}
	if o.graph {
		if err := buildGraph(ctx, l, o, lang, layout); err != nil {
			l.Fatal("Error building graph", "err", err)
		}
	}
}
