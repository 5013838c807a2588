package template

import (
	"fmt"
	html "html/template"
	"io/fs"
	"os"
	"path"
)

// Templates gatekeeper ships with.
const (
	ErrorTmpl  = "tmpl/error.tmpl"
	LayoutTmpl = "tmpl/layout.tmpl"
	LoginTmpl  = "tmpl/login.tmpl"
	StatusTmpl = "tmpl/status.tmpl"
)

// Parser is the interface for parsing HTML templates with the functions provided.
type Parser interface {
	AddFn(name string, fn any)
	Parse(fps ...string) (*html.Template, error)
}

// Parse implements Parser with a focus on utilizing embedded HTML templates through fs.FS.
//
// Functions are added while setting up an application;
// Parse is safe for concurrent use once requests are being served.
type Parse struct {
	fs  fs.FS
	fns html.FuncMap
}

// NewParser constructs a Parse with the provided functional options.
//
// Files not found in the configured fs.FS, or the working directory when none is configured,
// are looked up among the templates gatekeeper ships with under "tmpl/".
// The "nonce" function those templates call is always available.
func NewParser(opts ...ParserOptFn) Parser {
	p := &Parse{fns: make(html.FuncMap)}
	p.AddFn(Nonce())
	for _, opt := range opts {
		opt(p)
	}

	userFS := p.fs
	if userFS == nil {
		userFS = os.DirFS(".")
	}

	p.fs = newMergeFS(userFS, pkgFS)

	return p
}

// Parse parses files found in the *Parse.fs with those functions provided previously.
// The first file names the returned template.
func (p *Parse) Parse(fps ...string) (*html.Template, error) {
	files := make([]string, 0, len(fps))
	for _, fp := range fps {
		if fp != "" {
			files = append(files, fp)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w", ErrNoFiles)
	}

	return html.New(path.Base(files[0])).Funcs(p.fns).ParseFS(p.fs, files...)
}
