package detect

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/penwyp/autoenv/internal/errors"
	"github.com/penwyp/autoenv/internal/pyversion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content)}
}

func TestScanner_Find(t *testing.T) {
	tests := []struct {
		name        string
		files       fstest.MapFS
		expectFound bool
		expectFile  string
		expectLine  string
		expectValue string
	}{
		{
			name:        "no metadata files",
			files:       fstest.MapFS{},
			expectFound: false,
		},
		{
			name: "pyproject.toml",
			files: fstest.MapFS{
				"pyproject.toml": file("[project]\nname = \"demo\"\nrequires-python = \">=3.9\"\n"),
			},
			expectFound: true,
			expectFile:  "pyproject.toml",
			expectLine:  `requires-python = ">=3.9"`,
			expectValue: ">=3.9",
		},
		{
			name: "setup.py indented kwarg",
			files: fstest.MapFS{
				"setup.py": file("setup(\n    name='demo',\n    python_requires='<3.11',\n)\n"),
			},
			expectFound: true,
			expectFile:  "setup.py",
			expectLine:  "    python_requires='<3.11',",
			expectValue: "<3.11",
		},
		{
			name: "setup.cfg",
			files: fstest.MapFS{
				"setup.cfg": file("[options]\npython_requires = 3.9.4\n"),
			},
			expectFound: true,
			expectFile:  "setup.cfg",
			expectLine:  "python_requires = 3.9.4",
			expectValue: "3.9.4",
		},
		{
			name: "runtime.txt pin",
			files: fstest.MapFS{
				"runtime.txt": file("python-3.8.9\n"),
			},
			expectFound: true,
			expectFile:  "runtime.txt",
			expectLine:  "python-3.8.9",
			expectValue: "3.8.9",
		},
		{
			name: "pyproject wins over every other source",
			files: fstest.MapFS{
				"pyproject.toml": file(`requires-python = "3.8.5"`),
				"setup.py":       file(`python_requires="3.7.0"`),
				"setup.cfg":      file(`python_requires="3.6.0"`),
				"runtime.txt":    file("python-3.5.0"),
			},
			expectFound: true,
			expectFile:  "pyproject.toml",
			expectLine:  `requires-python = "3.8.5"`,
			expectValue: "3.8.5",
		},
		{
			name: "setup.py is probed before setup.cfg",
			files: fstest.MapFS{
				"setup.py":  file(`python_requires="3.7.0"`),
				"setup.cfg": file(`python_requires="3.6.0"`),
			},
			expectFound: true,
			expectFile:  "setup.py",
			expectLine:  `python_requires="3.7.0"`,
			expectValue: "3.7.0",
		},
		{
			name: "file without the field falls through",
			files: fstest.MapFS{
				"pyproject.toml": file("[tool.black]\nline-length = 100\n"),
				"setup.cfg":      file("python_requires = 3.10.4\n"),
			},
			expectFound: true,
			expectFile:  "setup.cfg",
			expectLine:  "python_requires = 3.10.4",
			expectValue: "3.10.4",
		},
		{
			name: "first matching line only",
			files: fstest.MapFS{
				"pyproject.toml": file("requires-python = \"3.8.5\"\nrequires-python = \"3.9.0\"\n"),
			},
			expectFound: true,
			expectFile:  "pyproject.toml",
			expectLine:  `requires-python = "3.8.5"`,
			expectValue: "3.8.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl, found, err := NewScanner(tt.files).Find()
			require.NoError(t, err)
			assert.Equal(t, tt.expectFound, found)
			if !tt.expectFound {
				return
			}
			assert.Equal(t, tt.expectFile, decl.Source.Filename)
			assert.Equal(t, tt.expectLine, decl.Line)
			assert.Equal(t, tt.expectValue, decl.Value())
		})
	}
}

func TestScanner_FindSpec(t *testing.T) {
	tests := []struct {
		name     string
		files    fstest.MapFS
		isNil    bool
		operator pyversion.Operator
		optimal  string
	}{
		{
			name:  "nothing declared",
			files: fstest.MapFS{},
			isNil: true,
		},
		{
			name:     "pin is parsed as a bare version",
			files:    fstest.MapFS{"runtime.txt": file("python-3.8.9\n")},
			operator: pyversion.Equal,
			optimal:  "3.8.9",
		},
		{
			name:     "assignment",
			files:    fstest.MapFS{"setup.cfg": file("python_requires = <3.10\n")},
			operator: pyversion.LessThan,
			optimal:  "3.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := NewScanner(tt.files).FindSpec()
			require.NoError(t, err)
			if tt.isNil {
				assert.Nil(t, spec)
				return
			}
			require.NotNil(t, spec)
			assert.Equal(t, tt.operator, spec.Operator)
			assert.Equal(t, tt.optimal, spec.Optimal)
		})
	}
}

func TestScanner_FindSpec_Unsupported(t *testing.T) {
	files := fstest.MapFS{"pyproject.toml": file(`requires-python = "~=3.8"`)}

	spec, err := NewScanner(files).FindSpec()

	assert.Nil(t, spec)
	assert.ErrorIs(t, err, errors.ErrUnsupportedSpecifier)
	assert.Contains(t, err.Error(), "pyproject.toml")
}

func TestScanner_CustomSources(t *testing.T) {
	files := fstest.MapFS{
		"pyproject.toml": file(`requires-python = "3.8.5"`),
		"Pipfile":        file("python_version = \"3.11\"\n"),
	}

	s := NewScanner(files, Source{Filename: "Pipfile", Prefix: "python_version", Kind: KindAssignment})
	decl, found, err := s.Find()

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "3.11", decl.Value())
	assert.Len(t, s.Sources(), 1)
}

func TestScanner_ReadError(t *testing.T) {
	// a directory where a file is expected cannot be read
	files := fstest.MapFS{"pyproject.toml/nested": file("x")}

	_, _, err := NewScanner(files).Find()

	assert.Error(t, err)
}

func TestNewDirScanner(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "setup.cfg"), []byte("python_requires=\"3.9.4\"\n"), 0o644))

	spec, err := NewDirScanner(dir).FindSpec()

	require.NoError(t, err)
	require.NotNil(t, spec)
	assert.Equal(t, "3.9.4", spec.Optimal)
	assert.Equal(t, DefaultSources, NewDirScanner(dir).Sources())
}
