package wikigraph

import (
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
)

// A CleanedArticle is one record of the article corpus.
type CleanedArticle struct {
	Title      string `parquet:"title"`
	Text       string `parquet:"text"`
	IsRedirect bool   `parquet:"is_redirect"`
}

// parquetFile writes rows of T to a gzip compressed parquet file.
type parquetFile[T any] struct {
	f *os.File
	w *parquet.GenericWriter[T]
}

func createParquet[T any](filename string) (*parquetFile[T], error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, errors.Wrap(err, "creating output")
	}
	return &parquetFile[T]{
		f: f,
		w: parquet.NewGenericWriter[T](f, parquet.Compression(&parquet.Gzip)),
	}, nil
}

func (p *parquetFile[T]) write(rows []T) error {
	if _, err := p.w.Write(rows); err != nil {
		return errors.Wrapf(err, "writing %v", p.f.Name())
	}
	return nil
}

func (p *parquetFile[T]) close() error {
	err := p.w.Close()
	if cerr := p.f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "closing %v", p.f.Name())
}

// writeParquet writes all of rows to a new file in one go.
func writeParquet[T any](filename string, rows []T) error {
	p, err := createParquet[T](filename)
	if err != nil {
		return err
	}
	if err := p.write(rows); err != nil {
		p.close()
		return err
	}
	return p.close()
}

// parquetReader reads rows of T back in batches.
type parquetReader[T any] struct {
	f *os.File
	r *parquet.GenericReader[T]
}

func openParquet[T any](filename string) (*parquetReader[T], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening input")
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "stat %v", filename)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "reading %v", filename)
	}
	return &parquetReader[T]{f: f, r: parquet.NewGenericReader[T](pf)}, nil
}

// next reads up to n rows, returning io.EOF once none are left.
func (p *parquetReader[T]) next(n int) ([]T, error) {
	rows := make([]T, n)
	got, err := p.r.Read(rows)
	if got > 0 {
		return rows[:got], nil
	}
	if err == nil || err == io.EOF {
		return nil, io.EOF
	}
	return nil, errors.Wrapf(err, "reading %v", p.f.Name())
}

func (p *parquetReader[T]) numRows() int64 {
	return p.r.NumRows()
}

func (p *parquetReader[T]) close() error {
	p.r.Close()
	return p.f.Close()
}

// readParquet reads a whole file.
func readParquet[T any](filename string) ([]T, error) {
	p, err := openParquet[T](filename)
	if err != nil {
		return nil, err
	}
	defer p.close()

	rv := make([]T, 0, p.numRows())
	for {
		rows, err := p.next(10000)
		if err == io.EOF {
			return rv, nil
		}
		if err != nil {
			return nil, err
		}
		rv = append(rv, rows...)
	}
}

// CorpusWriter appends cleaned articles to a parquet corpus file.
//
// The file is created on the first Write.  Close always leaves a valid
// file behind, an empty one if nothing was ever written.
type CorpusWriter struct {
	filename string
	out      *parquetFile[CleanedArticle]
	written  int64
	closed   bool
}

// NewCorpusWriter gets a writer for the corpus at filename.
func NewCorpusWriter(filename string) *CorpusWriter {
	return &CorpusWriter{filename: filename}
}

func (c *CorpusWriter) open() error {
	if c.out != nil {
		return nil
	}
	out, err := createParquet[CleanedArticle](c.filename)
	if err != nil {
		return err
	}
	c.out = out
	return nil
}

// Write appends a batch of articles.  Empty batches are ignored.
func (c *CorpusWriter) Write(articles []CleanedArticle) error {
	if c.closed {
		return errors.New("write to closed corpus")
	}
	if len(articles) == 0 {
		return nil
	}
	if err := c.open(); err != nil {
		return err
	}
	if err := c.out.write(articles); err != nil {
		return err
	}
	c.written += int64(len(articles))
	return nil
}

// Written is the number of articles written so far.
func (c *CorpusWriter) Written() int64 {
	return c.written
}

// Close finishes the file.  Calling it more than once is harmless.
func (c *CorpusWriter) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.open(); err != nil {
		return err
	}
	return c.out.close()
}

// CorpusReader reads a corpus back in batches.
type CorpusReader struct {
	p *parquetReader[CleanedArticle]
}

// OpenCorpus opens the corpus at filename.
func OpenCorpus(filename string) (*CorpusReader, error) {
	p, err := openParquet[CleanedArticle](filename)
	if err != nil {
		return nil, err
	}
	return &CorpusReader{p}, nil
}

// Next gets up to n more articles, or io.EOF.
func (c *CorpusReader) Next(n int) ([]CleanedArticle, error) {
	return c.p.next(n)
}

// NumArticles is the total number of articles in the corpus.
func (c *CorpusReader) NumArticles() int64 {
	return c.p.numRows()
}

// Close closes the underlying file.
func (c *CorpusReader) Close() error {
	return c.p.close()
}
