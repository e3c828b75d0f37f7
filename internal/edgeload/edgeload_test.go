package edgeload

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multilgraphwiki/go-wikigraph"
)

var sample = []wikigraph.Edge{
	{Source: "a", Target: "b"},
	{Source: "b", Target: "c"},
	{Source: "c", Target: "a"},
}

func collect(t *testing.T, s *Source, batchSize int) ([]wikigraph.Edge, int) {
	var got []wikigraph.Edge
	batches := 0
	n, err := Each(context.Background(), nil, s, batchSize,
		func(_ context.Context, edges []wikigraph.Edge) error {
			assert.LessOrEqual(t, len(edges), batchSize)
			got = append(got, edges...)
			batches++
			return nil
		})
	require.NoError(t, err)
	assert.EqualValues(t, len(got), n)
	return got, batches
}

func TestStringGraph(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "g.parquet")
	require.NoError(t, wikigraph.WriteEdges(fn, sample))

	s, err := Open(fn, "")
	require.NoError(t, err)
	defer s.Close()
	assert.EqualValues(t, 3, s.Total())

	got, batches := collect(t, s, 2)
	assert.Equal(t, sample, got)
	assert.Equal(t, 2, batches)
}

func TestRelabeledGraph(t *testing.T) {
	dir := t.TempDir()
	numeric, index := wikigraph.Relabel(sample)
	efn, ifn := filepath.Join(dir, "g.parquet"), filepath.Join(dir, "idx.parquet")
	require.NoError(t, wikigraph.WriteNumericEdges(efn, numeric))
	require.NoError(t, wikigraph.WriteNodeIndex(ifn, index))

	s, err := Open(efn, ifn)
	require.NoError(t, err)
	defer s.Close()

	got, batches := collect(t, s, 10)
	assert.Equal(t, sample, got)
	assert.Equal(t, 1, batches)
}

func TestRelabeledGraphBadIndex(t *testing.T) {
	dir := t.TempDir()
	efn, ifn := filepath.Join(dir, "g.parquet"), filepath.Join(dir, "idx.parquet")
	require.NoError(t, wikigraph.WriteNumericEdges(efn, []wikigraph.NumericEdge{{Source: 0, Target: 7}}))
	require.NoError(t, wikigraph.WriteNodeIndex(ifn, []wikigraph.NodeLabel{{ID: 0, Label: "a"}}))

	_, err := Open(efn, ifn)
	assert.Error(t, err)
}

func TestEachStops(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "g.parquet")
	require.NoError(t, wikigraph.WriteEdges(fn, sample))
	s, err := Open(fn, "")
	require.NoError(t, err)
	defer s.Close()

	boom := assert.AnError
	calls := 0
	_, err = Each(context.Background(), nil, s, 1,
		func(context.Context, []wikigraph.Edge) error {
			calls++
			return boom
		})
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
}
