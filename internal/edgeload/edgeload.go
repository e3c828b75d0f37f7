// Package edgeload reads a link graph back in batches for loading into
// a graph or relational store.
package edgeload

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/multilgraphwiki/go-wikigraph"
)

// Source gives out the edges of a graph file with titles as endpoints.
type Source struct {
	r *wikigraph.EdgeReader
	// Edges of a relabeled graph, translated back to titles.
	edges []wikigraph.Edge
	total int64
}

// Open opens a graph.  An empty indexFile means edgesFile has titles as
// endpoints; otherwise edgesFile is relabeled and indexFile is its
// node index.
func Open(edgesFile, indexFile string) (*Source, error) {
	if indexFile == "" {
		r, err := wikigraph.OpenEdges(edgesFile)
		if err != nil {
			return nil, err
		}
		return &Source{r: r, total: r.NumEdges()}, nil
	}

	index, err := wikigraph.ReadNodeIndex(indexFile)
	if err != nil {
		return nil, err
	}
	labels := make(map[int64]string, len(index))
	for _, n := range index {
		labels[n.ID] = n.Label
	}
	numeric, err := wikigraph.ReadNumericEdges(edgesFile)
	if err != nil {
		return nil, err
	}
	edges := make([]wikigraph.Edge, len(numeric))
	for i, e := range numeric {
		s, sok := labels[e.Source]
		t, tok := labels[e.Target]
		if !sok || !tok {
			return nil, errors.Errorf("edge %v->%v not in node index %v",
				e.Source, e.Target, indexFile)
		}
		edges[i] = wikigraph.Edge{Source: s, Target: t}
	}
	return &Source{edges: edges, total: int64(len(edges))}, nil
}

// Next gets up to n more edges, or io.EOF.
func (s *Source) Next(n int) ([]wikigraph.Edge, error) {
	if s.r != nil {
		return s.r.Next(n)
	}
	if len(s.edges) == 0 {
		return nil, io.EOF
	}
	if n > len(s.edges) {
		n = len(s.edges)
	}
	rv := s.edges[:n]
	s.edges = s.edges[n:]
	return rv, nil
}

// Total is the number of edges in the graph.
func (s *Source) Total() int64 {
	return s.total
}

func (s *Source) Close() error {
	if s.r != nil {
		return s.r.Close()
	}
	return nil
}

// Each runs store on consecutive batches of at most batchSize edges
// until the source runs out, stopping at the first error.
func Each(ctx context.Context, l *log.Logger, s *Source, batchSize int,
	store func(context.Context, []wikigraph.Edge) error) (int64, error) {

	if l == nil {
		l = log.Default()
	}
	start := time.Now()
	done := int64(0)
	for {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		batch, err := s.Next(batchSize)
		if err == io.EOF {
			break
		}
		if err != nil {
			return done, err
		}
		if err := store(ctx, batch); err != nil {
			return done, err
		}
		done += int64(len(batch))
		l.Infof("Loaded %s of %s edges (%.2f/s)", humanize.Comma(done),
			humanize.Comma(s.Total()), float64(done)/time.Since(start).Seconds())
	}
	return done, nil
}
