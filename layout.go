package wikigraph

import "path/filepath"

// Layout places the files of one language under a base directory:
//
//	<base>/<lang>/output/<lang>_WP_titles_texts.parquet
//	<base>/<lang>/graph/<lang>_graph_wiki_cleaned.parquet
//	<base>/<lang>/graph/<lang>_graph_node_index.parquet
//	<base>/<lang>/graph/<lang>_redirects_rev_mapping.gob.gz
type Layout struct {
	Base string
	Lang string
}

// OutputDir holds the corpus.
func (l Layout) OutputDir() string {
	return filepath.Join(l.Base, l.Lang, "output")
}

// CorpusPath is the corpus file.
func (l Layout) CorpusPath() string {
	return filepath.Join(l.OutputDir(), l.Lang+"_WP_titles_texts.parquet")
}

// GraphDir holds the graph, its node index and the redirect cache.
func (l Layout) GraphDir() string {
	return filepath.Join(l.Base, l.Lang, "graph")
}

// EdgesPath is where GraphBuilder.Build puts the edges.
func (l Layout) EdgesPath() string {
	return filepath.Join(l.GraphDir(), l.Lang+"_graph_wiki_cleaned.parquet")
}

// NodeIndexPath is where GraphBuilder.Build puts the node index.
func (l Layout) NodeIndexPath() string {
	return filepath.Join(l.GraphDir(), l.Lang+"_graph_node_index.parquet")
}
