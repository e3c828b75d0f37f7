package wikigraph

import (
	"compress/gzip"
	"context"
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// A RedirectMap maps the title of a redirect page to the title it
// redirects to.
type RedirectMap map[string]string

// Resolve follows a single redirect.  Chains aren't followed: with
// a->b and b->c, a resolves to b.
func (m RedirectMap) Resolve(title string) string {
	if to, ok := m[title]; ok {
		return to
	}
	return title
}

// BuildRedirectMap collects the redirects out of a raw edge list.
//
// The first edge seen for a redirect page is the one taken, as that
// is the link right after the redirect keyword.  Later links on the
// page (categories, notes under the redirect) never replace it, so a
// redirect does not point at whatever it happens to link to last.
// Redirects onto themselves are left out.
func BuildRedirectMap(raw []RawEdge) RedirectMap {
	rv := RedirectMap{}
	for _, e := range raw {
		if !e.FromRedirect || e.Source == e.Target {
			continue
		}
		if _, seen := rv[e.Source]; !seen {
			rv[e.Source] = e.Target
		}
	}
	return rv
}

// A RedirectStore keeps built redirect maps around between runs.
type RedirectStore interface {
	// Load gets the map stored under key.  ok is false if there
	// is none.
	Load(ctx context.Context, key string) (m RedirectMap, ok bool, err error)
	// Save stores m under key.
	Save(ctx context.Context, key string, m RedirectMap) error
}

// FileStore keeps redirect maps as gzipped gob files in a directory.
type FileStore struct {
	Dir string
}

// Path is the file a key is stored in.
func (fs FileStore) Path(key string) string {
	return filepath.Join(fs.Dir, key+"_redirects_rev_mapping.gob.gz")
}

// Load implements RedirectStore.
func (fs FileStore) Load(ctx context.Context, key string) (RedirectMap, bool, error) {
	f, err := os.Open(fs.Path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "opening redirect cache")
	}
	defer f.Close()

	z, err := gzip.NewReader(f)
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading redirect cache %v", f.Name())
	}
	defer z.Close()

	m := RedirectMap{}
	if err := gob.NewDecoder(z).Decode(&m); err != nil {
		return nil, false, errors.Wrapf(err, "decoding redirect cache %v", f.Name())
	}
	return m, true, nil
}

// Save implements RedirectStore.  The file is written under a
// temporary name and moved into place once complete.
func (fs FileStore) Save(ctx context.Context, key string, m RedirectMap) error {
	if err := os.MkdirAll(fs.Dir, 0777); err != nil {
		return errors.Wrap(err, "creating redirect cache dir")
	}
	fn := fs.Path(key)
	f, err := os.CreateTemp(fs.Dir, filepath.Base(fn)+".*")
	if err != nil {
		return errors.Wrap(err, "creating redirect cache")
	}
	defer os.Remove(f.Name())

	z := gzip.NewWriter(f)
	if m == nil {
		m = RedirectMap{}
	}
	err = gob.NewEncoder(z).Encode(m)
	if cerr := z.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, "writing redirect cache")
	}
	return errors.Wrap(os.Rename(f.Name(), fn), "installing redirect cache")
}
