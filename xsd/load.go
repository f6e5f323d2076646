package xsd

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/CognitoIQ/xsdclass/xmltree"
)

// DefaultMaxDepth is the import depth used by a Loader with a zero
// MaxDepth.
const DefaultMaxDepth = 10

// A Loader reads schema documents along with the documents they
// import and include. Locations may be file paths or http(s) URLs;
// relative locations are resolved against the document that
// references them.
type Loader struct {
	// Used to fetch remote documents. If nil, http.DefaultClient
	// is used.
	Client *http.Client
	// How many levels of imports are followed before giving up.
	MaxDepth int
}

// LoadFiles is shorthand for loading files with a zero Loader.
func LoadFiles(files ...string) (*Definition, error) {
	var l Loader
	return l.Load(files...)
}

type loadState struct {
	*Loader
	seen  map[string]bool
	roots []*xmltree.Element
}

// Load reads the schema at each location and every document they
// import or include, and parses them into a single Definition. Each
// location is read once. Imports that do not name a location are
// assumed to be satisfied by other documents and skipped.
func (l *Loader) Load(locations ...string) (*Definition, error) {
	st := loadState{Loader: l, seen: make(map[string]bool)}
	for _, loc := range locations {
		if err := st.load(loc, "", 0); err != nil {
			return nil, err
		}
	}
	return parseRoots(st.roots)
}

func (st *loadState) maxDepth() int {
	if st.MaxDepth > 0 {
		return st.MaxDepth
	}
	return DefaultMaxDepth
}

// load reads the document at loc. If chameleonNS is set, the
// document was included, and schema without a target namespace
// take on the including schema's.
func (st *loadState) load(loc, chameleonNS string, depth int) error {
	if st.seen[loc] {
		return nil
	}
	st.seen[loc] = true

	data, err := st.fetch(loc)
	if err != nil {
		return err
	}
	root, err := xmltree.Parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", loc, err)
	}
	schemas := schemaRoots(root)
	if len(schemas) == 0 {
		return fmt.Errorf("%s: no <schema> element found", loc)
	}
	for _, s := range schemas {
		if chameleonNS != "" && s.Attr("", "targetNamespace") == "" {
			s.SetAttr("", "targetNamespace", chameleonNS)
		}
		st.roots = append(st.roots, s)
	}
	for _, s := range schemas {
		for _, ref := range schemaImports(s) {
			if ref.Location == "" {
				continue
			}
			if depth+1 > st.maxDepth() {
				return fmt.Errorf("%s: imports nested deeper than %d levels", loc, st.maxDepth())
			}
			next, err := resolveLocation(loc, ref.Location)
			if err != nil {
				return err
			}
			var ns string
			if ref.Include {
				ns = s.Attr("", "targetNamespace")
			}
			if err := st.load(next, ns, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func isURL(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

func resolveLocation(base, loc string) (string, error) {
	if isURL(loc) || filepath.IsAbs(loc) {
		return loc, nil
	}
	if isURL(base) {
		u, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("invalid schema location %q: %w", base, err)
		}
		rel, err := url.Parse(loc)
		if err != nil {
			return "", fmt.Errorf("invalid schema location %q: %w", loc, err)
		}
		return u.ResolveReference(rel).String(), nil
	}
	return filepath.Join(filepath.Dir(base), loc), nil
}

func (st *loadState) fetch(loc string) ([]byte, error) {
	if !isURL(loc) {
		data, err := os.ReadFile(loc)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		return data, nil
	}
	client := st.Client
	if client == nil {
		client = http.DefaultClient
	}
	rsp, err := client.Get(loc)
	if err != nil {
		return nil, fmt.Errorf("fetch schema: %w", err)
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", loc, rsp.Status)
	}
	return io.ReadAll(rsp.Body)
}
