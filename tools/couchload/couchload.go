// Load a cleaned article corpus into CouchDB
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-couch"

	"github.com/multilgraphwiki/go-wikigraph/internal/clilog"
	"github.com/multilgraphwiki/go-wikigraph/internal/corpusload"
	"github.com/multilgraphwiki/go-wikigraph/internal/envutil"
)

type document struct {
	ID  string `json:"_id"`
	Rev string `json:"_rev,omitempty"`
	corpusload.Article
}

func escapeTitle(in string) string {
	return strings.Replace(strings.Replace(in, "/", "%2f", -1),
		"+", "%2b", -1)
}

// replace overwrites the stored copy of a document that is already
// there, e.g. from a previous load of an older dump.
func replace(l *log.Logger, db *couch.Database, d *document) {
	l.Debug("Resolving conflict", "id", d.ID)
	var prev document
	if err := db.Retrieve(d.ID, &prev); err != nil {
		l.Error("Error retrieving existing document", "id", d.ID, "err", err)
		return
	}
	if prev.Rev == "" {
		l.Warn("Got no rev", "id", d.ID)
		return
	}
	if prev.Text == d.Text && prev.Redirect == d.Redirect {
		return
	}
	if _, err := db.EditWith(d, d.ID, prev.Rev); err != nil {
		l.Error("Error updating document", "id", d.ID, "err", err)
	}
}

func store(l *log.Logger, db *couch.Database, a *corpusload.Article) {
	d := &document{ID: escapeTitle(a.Title), Article: *a}
	_, _, err := db.Insert(d)
	httpe, isHttpError := err.(*couch.HTTPError)
	switch {
	case err == nil:
		// yay
	case isHttpError && httpe.Status == 409:
		replace(l, db, d)
	default:
		l.Error("Error inserting article", "title", a.Title, "err", err)
	}
}

func main() {
	envutil.Load()
	workers := flag.Int("workers", 20, "Number of article workers")
	verbose := flag.Bool("v", envutil.Bool("DEBUG", false), "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr,
			"Usage:\n  %s [opts] http://localhost:5984/wiki xx_WP_titles_texts.parquet\n",
			os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	dburl, corpus := flag.Arg(0), flag.Arg(1)
	l := clilog.New("couchload", *verbose)

	db, err := couch.Connect(dburl)
	if err != nil {
		l.Fatal("Error connecting to couchdb", "err", err)
	}

	ld := &corpusload.Loader{
		Workers:     *workers,
		ReportEvery: 1000,
		Logger:      l,
		Handle: func(a *corpusload.Article) {
			store(l, &db, a)
		},
	}
	if _, err := ld.Load(context.Background(), corpus); err != nil {
		l.Fatal("Error loading corpus", "err", err)
	}
}
