package wikigraph

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/pkg/errors"
)

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var rv error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && rv == nil {
			rv = err
		}
	}
	return rv
}

// Decompress wraps r according to the compression implied by name:
// .bz2 and .gz are decompressed, anything else is passed through.
// Closing the result closes r as well.
func Decompress(name string, r io.ReadCloser) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".bz2"):
		bz, err := bzip2.NewReader(r, &bzip2.ReaderConfig{})
		if err != nil {
			r.Close()
			return nil, errors.Wrapf(err, "opening bzip2 stream %v", name)
		}
		return &multiCloser{bz, []io.Closer{bz, r}}, nil
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			r.Close()
			return nil, errors.Wrapf(err, "opening gzip stream %v", name)
		}
		return &multiCloser{gz, []io.Closer{gz, r}}, nil
	}
	return r, nil
}

// OpenDump opens a dump file from disk, decompressing it on the fly.
func OpenDump(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "opening dump")
	}
	return Decompress(filename, f)
}
