// Package detect finds the Python version a project declares in its
// metadata files.
package detect

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/penwyp/autoenv/internal/pyversion"
)

// Kind tells how a matched line carries its version.
type Kind int

const (
	// KindAssignment lines look like `key = "constraint"`.
	KindAssignment Kind = iota
	// KindPin lines are the prefix immediately followed by a bare version
	// (runtime.txt: "python-3.8.9").
	KindPin
)

// Source is one probe: a file and the line prefix that declares the version.
type Source struct {
	Filename string
	Prefix   string
	Kind     Kind
}

// DefaultSources are probed in order; the first match wins.
var DefaultSources = []Source{
	{Filename: "pyproject.toml", Prefix: "requires-python", Kind: KindAssignment},
	{Filename: "setup.py", Prefix: "python_requires", Kind: KindAssignment},
	{Filename: "setup.cfg", Prefix: "python_requires", Kind: KindAssignment},
	{Filename: "runtime.txt", Prefix: "python-", Kind: KindPin},
}

// Declaration is the raw line a Source matched.
type Declaration struct {
	Source Source
	Line   string
}

// Value returns the constraint text of the line without key, quotes or pin prefix.
func (d Declaration) Value() string {
	if d.Source.Kind == KindPin {
		return strings.TrimPrefix(strings.TrimSpace(d.Line), d.Source.Prefix)
	}
	_, value, _ := strings.Cut(d.Line, "=")
	return strings.Trim(value, "\t \"',")
}

// Spec parses the declaration into a version spec.
func (d Declaration) Spec() (pyversion.Spec, error) {
	if d.Source.Kind == KindPin {
		return pyversion.Parse(d.Value())
	}
	return pyversion.ParseAssignment(d.Line)
}

// Scanner probes Sources inside a file system rooted at the project directory.
type Scanner struct {
	fsys    fs.FS
	sources []Source
}

// NewScanner creates a Scanner over fsys using DefaultSources.
func NewScanner(fsys fs.FS, sources ...Source) *Scanner {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	return &Scanner{fsys: fsys, sources: sources}
}

// NewDirScanner creates a Scanner for the project directory dir.
func NewDirScanner(dir string) *Scanner {
	return NewScanner(os.DirFS(dir))
}

// Sources returns the probes in the order they are tried.
func (s *Scanner) Sources() []Source {
	return s.sources
}

// Find returns the first declaration found, or false when no source declares one.
func (s *Scanner) Find() (Declaration, bool, error) {
	for _, src := range s.sources {
		line, ok, err := findLineWithPrefix(s.fsys, src.Filename, src.Prefix)
		if err != nil {
			return Declaration{}, false, err
		}
		if ok {
			return Declaration{Source: src, Line: line}, true, nil
		}
	}
	return Declaration{}, false, nil
}

// FindSpec is Find followed by parsing. A nil spec means nothing was declared.
func (s *Scanner) FindSpec() (*pyversion.Spec, error) {
	decl, ok, err := s.Find()
	if err != nil || !ok {
		return nil, err
	}
	spec, err := decl.Spec()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", decl.Source.Filename, err)
	}
	return &spec, nil
}

func findLineWithPrefix(fsys fs.FS, name, prefix string) (string, bool, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", name, err)
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			return line, true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", false, fmt.Errorf("scan %s: %w", name, err)
	}
	return "", false, nil
}
