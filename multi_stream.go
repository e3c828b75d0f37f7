package wikigraph

import (
	"context"
	"encoding/xml"
	"io"
	"os"
	"sync"

	"github.com/dsnet/compress/bzip2"
	"github.com/pkg/errors"
)

type indexChunk struct {
	offset int64
	count  int
}

// xmlPage is the shape of a page element as decoded from a
// multistream chunk.
type xmlPage struct {
	Title    string `xml:"title"`
	Revision struct {
		Text *string `xml:"text"`
	} `xml:"revision"`
}

type pageOrErr struct {
	page RawPage
	err  error
}

// IndexedParser reads a multistream dump in parallel, seeking to each
// bzip2 stream listed in the dump's index.
//
// Pages come out in no particular order.
type IndexedParser struct {
	workerch chan indexChunk
	entries  chan pageOrErr
	cancel   context.CancelFunc
	done     sync.WaitGroup
}

func (p *IndexedParser) send(ctx context.Context, e pageOrErr) bool {
	select {
	case p.entries <- e:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *IndexedParser) indexWorker(ctx context.Context, indexfn string) {
	defer close(p.workerch)

	r, err := OpenDump(indexfn)
	if err != nil {
		p.send(ctx, pageOrErr{err: err})
		return
	}
	defer r.Close()

	isr, err := NewIndexSummaryReader(r)
	if err != nil {
		p.send(ctx, pageOrErr{err: errors.Wrap(err, "reading index")})
		return
	}
	for {
		offset, count, err := isr.Next()
		if err != nil && err != io.EOF {
			p.send(ctx, pageOrErr{err: errors.Wrap(err, "reading index")})
			return
		}
		select {
		case p.workerch <- indexChunk{offset, count}:
		case <-ctx.Done():
			return
		}
		if err == io.EOF {
			return
		}
	}
}

func (p *IndexedParser) streamWorker(ctx context.Context, datafn string) {
	defer p.done.Done()

	r, err := os.Open(datafn)
	if err != nil {
		p.send(ctx, pageOrErr{err: errors.Wrap(err, "opening dump")})
		return
	}
	defer r.Close()

	for chunk := range p.workerch {
		if ctx.Err() != nil {
			return
		}
		if err := p.readChunk(ctx, r, chunk); err != nil {
			p.send(ctx, pageOrErr{err: err})
			return
		}
	}
}

func (p *IndexedParser) readChunk(ctx context.Context, r io.ReadSeeker, chunk indexChunk) error {
	if _, err := r.Seek(chunk.offset, io.SeekStart); err != nil {
		return errors.Wrapf(err, "seeking to stream at %v", chunk.offset)
	}
	bz, err := bzip2.NewReader(r, &bzip2.ReaderConfig{})
	if err != nil {
		return errors.Wrapf(err, "opening stream at %v", chunk.offset)
	}
	defer bz.Close()

	d := xml.NewDecoder(bz)
	for i := 0; i < chunk.count; i++ {
		var xp xmlPage
		err := d.Decode(&xp)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "decoding page in stream at %v", chunk.offset)
		}
		if xp.Title == "" || xp.Revision.Text == nil {
			continue
		}
		if !p.send(ctx, pageOrErr{page: RawPage{xp.Title, *xp.Revision.Text}}) {
			return nil
		}
	}
	return nil
}

// NewIndexedParser gets a multistream dump parser using numWorkers
// goroutines to decode streams.
//
// Close must be called if the parser is abandoned before Next returns
// io.EOF.
func NewIndexedParser(indexfn, datafn string, numWorkers int) (*IndexedParser, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if _, err := os.Stat(datafn); err != nil {
		return nil, errors.Wrap(err, "opening dump")
	}

	ctx, cancel := context.WithCancel(context.Background())
	rv := &IndexedParser{
		workerch: make(chan indexChunk, 1000),
		entries:  make(chan pageOrErr, 1000),
		cancel:   cancel,
	}

	rv.done.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go rv.streamWorker(ctx, datafn)
	}

	go rv.indexWorker(ctx, indexfn)

	go func() {
		rv.done.Wait()
		close(rv.entries)
	}()

	return rv, nil
}

// Next gets the next page decoded by any of the workers.
func (p *IndexedParser) Next() (RawPage, error) {
	e, ok := <-p.entries
	if !ok {
		return RawPage{}, io.EOF
	}
	return e.page, e.err
}

// Close stops the workers.
func (p *IndexedParser) Close() error {
	p.cancel()
	for range p.entries {
	}
	return nil
}
