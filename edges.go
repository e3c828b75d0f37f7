package wikigraph

// An Edge is a link from the article Source to the article Target.
type Edge struct {
	Source string `parquet:"source"`
	Target string `parquet:"target"`
}

// A NumericEdge is an Edge after relabeling.
type NumericEdge struct {
	Source int64 `parquet:"source"`
	Target int64 `parquet:"target"`
}

// A NodeLabel maps a node id to the article title it stands for.
type NodeLabel struct {
	ID    int64  `parquet:"id"`
	Label string `parquet:"label"`
}

// WriteEdges writes a graph with string node labels.
func WriteEdges(filename string, edges []Edge) error {
	return writeParquet(filename, edges)
}

// WriteNumericEdges writes a relabeled graph.
func WriteNumericEdges(filename string, edges []NumericEdge) error {
	return writeParquet(filename, edges)
}

// WriteNodeIndex writes the id to label table of a relabeled graph.
func WriteNodeIndex(filename string, index []NodeLabel) error {
	return writeParquet(filename, index)
}

// ReadEdges reads back a graph written by WriteEdges.
func ReadEdges(filename string) ([]Edge, error) {
	return readParquet[Edge](filename)
}

// ReadNumericEdges reads back a graph written by WriteNumericEdges.
func ReadNumericEdges(filename string) ([]NumericEdge, error) {
	return readParquet[NumericEdge](filename)
}

// ReadNodeIndex reads back a table written by WriteNodeIndex.
func ReadNodeIndex(filename string) ([]NodeLabel, error) {
	return readParquet[NodeLabel](filename)
}

// EdgeReader streams a string-labeled graph in batches, for graphs
// too large to hold at once.
type EdgeReader struct {
	p *parquetReader[Edge]
}

// OpenEdges opens a graph written by WriteEdges.
func OpenEdges(filename string) (*EdgeReader, error) {
	p, err := openParquet[Edge](filename)
	if err != nil {
		return nil, err
	}
	return &EdgeReader{p}, nil
}

// Next gets up to n more edges, or io.EOF.
func (e *EdgeReader) Next(n int) ([]Edge, error) {
	return e.p.next(n)
}

// NumEdges is the total number of edges in the file.
func (e *EdgeReader) NumEdges() int64 {
	return e.p.numRows()
}

// Close closes the underlying file.
func (e *EdgeReader) Close() error {
	return e.p.close()
}
