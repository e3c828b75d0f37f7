// Load a cleaned article corpus into Couchbase
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/couchbase/go-couchbase"

	"github.com/multilgraphwiki/go-wikigraph/internal/clilog"
	"github.com/multilgraphwiki/go-wikigraph/internal/corpusload"
	"github.com/multilgraphwiki/go-wikigraph/internal/envutil"
)

var numWorkers = flag.Int("numWorkers", 8, "Number of article workers")

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage:\n  %s [opts] xx_WP_titles_texts.parquet\n",
		os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	envutil.Load()
	couchbaseServer := flag.String("couchbase",
		envutil.String("COUCHBASE_URL", "http://localhost:8091/"), "Couchbase URL")
	couchbaseBucket := flag.String("bucket", "default", "Couchbase bucket")
	procs := flag.Int("cpus", runtime.NumCPU(), "Number of CPUS to use")
	verbose := flag.Bool("v", envutil.Bool("DEBUG", false), "Verbose logging")
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
	}
	runtime.GOMAXPROCS(*procs)
	l := clilog.New("cbload", *verbose)

	db, err := couchbase.GetBucket(*couchbaseServer,
		"default", *couchbaseBucket)
	if err != nil {
		l.Fatal("Error connecting to couchbase", "err", err)
	}
	defer db.Close()

	ld := &corpusload.Loader{
		Workers:     *numWorkers,
		ReportEvery: 10000,
		Logger:      l,
		Handle: func(a *corpusload.Article) {
			if err := db.Set(a.Title, 0, a); err != nil {
				l.Error("Error setting article", "title", a.Title, "err", err)
			}
		},
	}
	if _, err := ld.Load(context.Background(), flag.Arg(0)); err != nil {
		l.Fatal("Error loading corpus", "err", err)
	}
}
