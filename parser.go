package wikigraph

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
)

// The toplevel site info describing basic dump properties.
type SiteInfo struct {
	SiteName   string `xml:"sitename"`
	Base       string `xml:"base"`
	Generator  string `xml:"generator"`
	Case       string `xml:"case"`
	Namespaces []struct {
		Key   string `xml:"key,attr"`
		Case  string `xml:"case,attr"`
		Value string `xml:",chardata"`
	} `xml:"namespaces>namespace"`
}

// A RawPage is a page as found in the dump: its title and the markup
// of its (latest) revision.
type RawPage struct {
	Title string
	Text  string
}

// A PageSource emits raw pages.
//
// Next returns io.EOF once the source is exhausted.  Any other error
// means the underlying stream is broken and no further pages will
// follow.
type PageSource interface {
	Next() (RawPage, error)
}

// malformed reports whether err says the dump itself is broken (bad
// xml or a stream cut short) rather than that reading it failed.
func malformed(err error) bool {
	var serr *xml.SyntaxError
	return errors.As(err, &serr) || errors.Is(err, io.ErrUnexpectedEOF)
}

// Parser reads pages one at a time from a single xml stream.
//
// Only the page, title and text elements are looked at; everything
// else in the dump is skipped.  A page is emitted only once both its
// title and its text have been seen.
type Parser struct {
	// The toplevel site info.  Filled in when the parser walks past
	// the siteinfo element, i.e. before the first page is returned.
	SiteInfo SiteInfo
	x        *xml.Decoder
}

// NewParser gets a wikipedia dump parser reading from the given reader.
func NewParser(r io.Reader) *Parser {
	d := xml.NewDecoder(r)
	d.Strict = true
	return &Parser{x: d}
}

// Next gets the next complete page from the parser.
func (p *Parser) Next() (RawPage, error) {
	var rv RawPage
	inPage, haveTitle, haveText := false, false, false

	for {
		t, err := p.x.Token()
		if err != nil {
			if err == io.EOF && inPage {
				err = io.ErrUnexpectedEOF
			}
			if err == io.EOF {
				return RawPage{}, err
			}
			return RawPage{}, errors.Wrap(err, "reading dump")
		}

		switch se := t.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "siteinfo":
				if err := p.x.DecodeElement(&p.SiteInfo, &se); err != nil {
					return RawPage{}, errors.Wrap(err, "decoding siteinfo")
				}
			case "page":
				rv = RawPage{}
				inPage, haveTitle, haveText = true, false, false
			case "title":
				if !inPage {
					continue
				}
				if err := p.x.DecodeElement(&rv.Title, &se); err != nil {
					return RawPage{}, errors.Wrap(err, "decoding title")
				}
				haveTitle = true
			case "text":
				if !inPage || !haveTitle {
					continue
				}
				if err := p.x.DecodeElement(&rv.Text, &se); err != nil {
					return RawPage{}, errors.Wrapf(err, "decoding text of %q", rv.Title)
				}
				haveText = true
			}
		case xml.EndElement:
			if se.Name.Local != "page" {
				continue
			}
			inPage = false
			if haveTitle && haveText {
				return rv, nil
			}
		}
	}
}
