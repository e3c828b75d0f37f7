// Load a cleaned article corpus into ElasticSearch
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-elasticsearch"

	"github.com/multilgraphwiki/go-wikigraph/internal/clilog"
	"github.com/multilgraphwiki/go-wikigraph/internal/corpusload"
	"github.com/multilgraphwiki/go-wikigraph/internal/envutil"
)

func bulkWorker(u, index string) (func(*corpusload.Article), func()) {
	counter := 0
	es := elasticsearch.ElasticSearch{URL: u}
	bulkLoader := es.Bulk()

	handle := func(a *corpusload.Article) {
		counter++
		if counter > 1000 {
			bulkLoader.SendBatch()
			counter = 0
		}
		ui := elasticsearch.UpdateInstruction{
			Id:    a.Title,
			Index: index,
			Type:  "article",
			Body: map[string]interface{}{
				"text":     a.Text,
				"redirect": a.Redirect,
				"links":    a.Links,
				"files":    a.Files,
				"fileURLs": a.FileURLs,
			},
		}
		bulkLoader.Update(&ui)
	}
	return handle, func() { bulkLoader.Quit() }
}

func main() {
	envutil.Load()
	workers := flag.Int("workers", 4, "Number of bulk loaders")
	index := flag.String("index", envutil.String("WIKIGRAPH_ES_INDEX", "wikipedia"),
		"Index to load into")
	verbose := flag.Bool("v", envutil.Bool("DEBUG", false), "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr,
			"Usage:\n  %s [opts] xx_WP_titles_texts.parquet http://localhost:9200/\n",
			os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	filename, esurl := flag.Arg(0), flag.Arg(1)
	l := clilog.New("esload", *verbose)

	ld := &corpusload.Loader{
		Workers:     *workers,
		ReportEvery: 1000,
		Logger:      l,
		PerWorker: func() (func(*corpusload.Article), func()) {
			return bulkWorker(esurl, *index)
		},
	}
	if _, err := ld.Load(context.Background(), filename); err != nil {
		l.Fatal("Error loading corpus", "err", err)
	}
}
