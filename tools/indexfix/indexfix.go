// Rewrite a multistream index with 64 bit stream offsets.
//
// Older dumps shipped indexes whose offsets wrapped around at 32 bits.
// The rewritten index can be read by tools that don't know about that.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/multilgraphwiki/go-wikigraph"
	"github.com/multilgraphwiki/go-wikigraph/internal/clilog"
)

func main() {
	streams := flag.Bool("streams", false, "Print one offset:count line per stream instead")
	flag.Parse()
	l := clilog.New("indexfix", false)
	if flag.NArg() != 1 {
		l.Fatalf("Usage: %s [-streams] enwiki-multistream-index.txt.bz2", os.Args[0])
	}

	r, err := wikigraph.OpenDump(flag.Arg(0))
	if err != nil {
		l.Fatal("Error opening index", "err", err)
	}
	defer r.Close()

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	n := int64(0)
	if *streams {
		isr, err := wikigraph.NewIndexSummaryReader(r)
		if err != nil {
			l.Fatal("Error reading index", "err", err)
		}
		for err == nil {
			var offset int64
			var count int
			offset, count, err = isr.Next()
			if count > 0 {
				fmt.Fprintf(w, "%d:%d\n", offset, count)
				n++
			}
		}
		if err != io.EOF {
			l.Fatal("Error reading index", "err", err)
		}
		l.Info("Done", "streams", humanize.Comma(n))
		return
	}

	ir := wikigraph.NewIndexReader(r)
	for {
		e, err := ir.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			l.Fatal("Error reading stream", "line", n+1, "err", err)
		}
		fmt.Fprintln(w, e.String())
		n++
	}
	l.Info("Done", "entries", humanize.Comma(n))
}
