// Package wikigraph turns wikipedia xml dumps into a corpus of cleaned
// article bodies and a directed link graph between articles.
//
// The dumps are available from the wikimedia group here:
//
//	http://dumps.wikimedia.org/
//
// Processing happens in two stages.  An Extractor streams pages out
// of a dump, filters out non-content pages, cleans the markup and
// appends the result to a parquet corpus file.  A GraphBuilder then
// reads that corpus, pulls the wikilinks out of every article and
// reduces them to a consistent edge set with redirects resolved.
//
// See the programs in the tools subpackages for how the pieces fit
// together.
package wikigraph
