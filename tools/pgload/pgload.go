// Load a link graph into PostgreSQL
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/multilgraphwiki/go-wikigraph"
	"github.com/multilgraphwiki/go-wikigraph/internal/clilog"
	"github.com/multilgraphwiki/go-wikigraph/internal/edgeload"
	"github.com/multilgraphwiki/go-wikigraph/internal/envutil"
)

const createTable = `
CREATE TABLE IF NOT EXISTS wiki_links (
	lang   text NOT NULL,
	source text NOT NULL,
	target text NOT NULL,
	PRIMARY KEY (lang, source, target)
)`

func main() {
	envutil.Load()
	dburl := flag.String("db", envutil.String("DATABASE_URL", ""), "PostgreSQL connection string")
	lang := flag.String("lang", envutil.String("WIKIGRAPH_LANG", "en"), "Language of the graph")
	index := flag.String("index", "", "Node index, if the graph is relabeled")
	batchSize := flag.Int("batch", 50000, "Edges per COPY")
	replace := flag.Bool("replace", false, "Delete the language's existing links first")
	verbose := flag.Bool("v", envutil.Bool("DEBUG", false), "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [opts] xx_graph_wiki_cleaned.parquet\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	l := clilog.New("pgload", *verbose)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, *dburl)
	if err != nil {
		l.Fatal("Error connecting to postgres", "err", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, createTable); err != nil {
		l.Fatal("Error creating table", "err", err)
	}
	if *replace {
		tag, err := pool.Exec(ctx, `DELETE FROM wiki_links WHERE lang = $1`, *lang)
		if err != nil {
			l.Fatal("Error clearing links", "err", err)
		}
		l.Info("Cleared links", "lang", *lang, "rows", tag.RowsAffected())
	}

	src, err := edgeload.Open(flag.Arg(0), *index)
	if err != nil {
		l.Fatal("Error opening graph", "err", err)
	}
	defer src.Close()

	n, err := edgeload.Each(ctx, l, src, *batchSize,
		func(ctx context.Context, edges []wikigraph.Edge) error {
			rows := make([][]any, len(edges))
			for i, e := range edges {
				rows[i] = []any{*lang, e.Source, e.Target}
			}
			_, err := pool.CopyFrom(ctx, pgx.Identifier{"wiki_links"},
				[]string{"lang", "source", "target"}, pgx.CopyFromRows(rows))
			return err
		})
	if err != nil {
		l.Fatal("Error loading graph", "loaded", n, "err", err)
	}
	l.Info("Done", "edges", n)
}
