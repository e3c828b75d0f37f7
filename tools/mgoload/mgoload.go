package main

import (
	"context"
	"flag"

	"gopkg.in/mgo.v2"

	"github.com/multilgraphwiki/go-wikigraph/internal/clilog"
	"github.com/multilgraphwiki/go-wikigraph/internal/corpusload"
	"github.com/multilgraphwiki/go-wikigraph/internal/envutil"
)

var proc = flag.Int("proc", 8, "How many workers to run.")
var file = flag.String("file", "", "The corpus parquet file.")
var collection = flag.String("collection", "articles", "The collection to store articles in.")
var dbname = flag.String("dbname", "wp", "The database name to use.")

// Titles in the corpus are normalized and unique.
var titleIndex = mgo.Index{
	Key:        []string{"title"},
	Unique:     true,
	DropDups:   true,
	Background: true,
	Sparse:     true,
}

type article struct {
	ID       string   `bson:"_id,omitempty"`
	Title    string   `bson:",omitempty"`
	Text     string   `bson:",omitempty"`
	Redirect bool     `bson:",omitempty"`
	Links    []string `bson:",omitempty"`
	Files    []string `bson:",omitempty"`
	FileURLs []string `bson:"fileurls,omitempty"`
}

func main() {
	envutil.Load()
	dburl := flag.String("dburl", envutil.String("MONGO_URL", "localhost"),
		"The dburl(s). I.e. localhost.")
	verbose := flag.Bool("v", envutil.Bool("DEBUG", false), "Verbose logging?")
	flag.Parse()
	l := clilog.New("mgoload", *verbose)
	if *file == "" {
		l.Fatal("You must supply a corpus file.")
	}
	session, err := mgo.Dial(*dburl)
	if err != nil {
		l.Fatal("Error connecting to mongo", "err", err)
	}
	defer session.Close()

	db := session.DB(*dbname)
	if err := db.C(*collection).EnsureIndex(titleIndex); err != nil {
		l.Fatal("Error creating title index", "err", err)
	}

	ld := &corpusload.Loader{
		Workers:     *proc,
		ReportEvery: 10000,
		Logger:      l,
		PerWorker: func() (func(*corpusload.Article), func()) {
			s := session.Copy()
			c := s.DB(*dbname).C(*collection)
			return func(a *corpusload.Article) {
				err := c.Insert(&article{
					Title:    a.Title,
					Text:     a.Text,
					Redirect: a.Redirect,
					Links:    a.Links,
					Files:    a.Files,
					FileURLs: a.FileURLs,
				})
				switch {
				case err == nil:
				case mgo.IsDup(err):
					l.Debug("Duplicate Key Error", "title", a.Title)
				default:
					l.Error("Error inserting", "title", a.Title, "err", err)
				}
			}, s.Close
		},
	}
	if _, err := ld.Load(context.Background(), *file); err != nil {
		l.Fatal("Error loading corpus", "err", err)
	}
}
