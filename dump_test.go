package wikigraph

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dsnet/compress/bzip2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bzip(t *testing.T, data string) []byte {
	var buf bytes.Buffer
	w, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzip2.BestSpeed})
	require.NoError(t, err)
	_, err = io.WriteString(w, data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func gzipped(t *testing.T, data string) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := io.WriteString(w, data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestOpenDump(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{
		"dump.xml":     []byte(sampleDump),
		"dump.xml.gz":  gzipped(t, sampleDump),
		"dump.xml.bz2": bzip(t, sampleDump),
	}
	for name, data := range files {
		fn := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(fn, data, 0666))

		r, err := OpenDump(fn)
		require.NoError(t, err, name)
		pages, err := readAll(t, NewParser(r))
		assert.NoError(t, err, name)
		assert.Len(t, pages, 2, name)
		assert.NoError(t, r.Close(), name)
	}
}

func TestOpenDumpErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := OpenDump(filepath.Join(dir, "missing.xml.bz2"))
	assert.Error(t, err)

	fn := filepath.Join(dir, "bogus.xml.gz")
	require.NoError(t, os.WriteFile(fn, []byte("not gzip at all"), 0666))
	_, err = OpenDump(fn)
	assert.Error(t, err)
}
