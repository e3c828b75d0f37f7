// Load a link graph into Neo4j
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/multilgraphwiki/go-wikigraph"
	"github.com/multilgraphwiki/go-wikigraph/internal/clilog"
	"github.com/multilgraphwiki/go-wikigraph/internal/edgeload"
	"github.com/multilgraphwiki/go-wikigraph/internal/envutil"
)

const mergeEdges = `
UNWIND $edges AS e
MERGE (s:Article {title: e.source, lang: $lang})
MERGE (t:Article {title: e.target, lang: $lang})
MERGE (s)-[:LINKS_TO]->(t)
`

func edgeParams(edges []wikigraph.Edge) []map[string]any {
	rv := make([]map[string]any, len(edges))
	for i, e := range edges {
		rv[i] = map[string]any{"source": e.Source, "target": e.Target}
	}
	return rv
}

func main() {
	envutil.Load()
	uri := flag.String("uri", envutil.String("NEO4J_URI", "neo4j://localhost:7687"), "Neo4j URI")
	user := flag.String("user", envutil.String("NEO4J_USER", "neo4j"), "Neo4j user")
	database := flag.String("db", envutil.String("NEO4J_DATABASE", ""), "Neo4j database")
	lang := flag.String("lang", envutil.String("WIKIGRAPH_LANG", "en"), "Language of the graph")
	index := flag.String("index", "", "Node index, if the graph is relabeled")
	batchSize := flag.Int("batch", 5000, "Edges per transaction")
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
	l := clilog.New("neo4jload", *verbose)
	ctx := context.Background()

	driver, err := neo4j.NewDriverWithContext(*uri,
		neo4j.BasicAuth(*user, envutil.String("NEO4J_PASSWORD", ""), ""))
	if err != nil {
		l.Fatal("Error creating neo4j driver", "err", err)
	}
	defer driver.Close(ctx)
	if err := driver.VerifyConnectivity(ctx); err != nil {
		l.Fatal("Error connecting to neo4j", "err", err)
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: *database,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx,
		`CREATE CONSTRAINT article_title_unique IF NOT EXISTS FOR (a:Article) REQUIRE (a.lang, a.title) IS UNIQUE`, nil)
	if err != nil {
		l.Warn("Could not create constraint", "err", err)
	} else if _, err := res.Consume(ctx); err != nil {
		l.Warn("Could not create constraint", "err", err)
	}

	src, err := edgeload.Open(flag.Arg(0), *index)
	if err != nil {
		l.Fatal("Error opening graph", "err", err)
	}
	defer src.Close()

	n, err := edgeload.Each(ctx, l, src, *batchSize,
		func(ctx context.Context, edges []wikigraph.Edge) error {
			_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
				res, err := tx.Run(ctx, mergeEdges, map[string]any{
					"edges": edgeParams(edges),
					"lang":  *lang,
				})
				if err != nil {
					return nil, err
				}
				return res.Consume(ctx)
			})
			return err
		})
	if err != nil {
		l.Fatal("Error loading graph", "loaded", n, "err", err)
	}
	l.Info("Done", "edges", n)
}
