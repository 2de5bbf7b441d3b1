// Package pyenv drives pyenv, python-build and pyenv-virtualenv.
package pyenv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	autoenverrors "github.com/penwyp/autoenv/internal/errors"
	"go.uber.org/zap"
)

const (
	DefaultPyenvCommand       = "pyenv"
	DefaultPythonBuildCommand = "python-build"
)

var pythonVersionPattern = regexp.MustCompile(`Python\s+(\S+)`)

// Client runs pyenv commands through a CommandRunner.
type Client struct {
	runner      CommandRunner
	pyenv       string
	pythonBuild string
	stdout      io.Writer
	stderr      io.Writer
	logger      *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCommands overrides the pyenv and python-build executables. Empty
// values keep the defaults.
func WithCommands(pyenv, pythonBuild string) Option {
	return func(c *Client) {
		if pyenv != "" {
			c.pyenv = pyenv
		}
		if pythonBuild != "" {
			c.pythonBuild = pythonBuild
		}
	}
}

// WithOutput sets where streamed command output goes.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *Client) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client. A nil runner means an ExecRunner.
func NewClient(runner CommandRunner, opts ...Option) *Client {
	c := &Client{
		runner:      runner,
		pyenv:       DefaultPyenvCommand,
		pythonBuild: DefaultPythonBuildCommand,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.runner == nil {
		c.runner = NewExecRunner(c.logger)
	}
	return c
}

// InstalledVersions lists installed interpreters and virtualenvs in natural order.
func (c *Client) InstalledVersions(ctx context.Context) ([]string, error) {
	lines, err := c.lines(ctx, c.pyenv, "versions", "--bare", "--skip-aliases")
	if err != nil {
		return nil, err
	}
	NaturalSort(lines)
	return lines, nil
}

// Definitions lists every version python-build knows how to install, in
// the order python-build prints them.
func (c *Client) Definitions(ctx context.Context) ([]string, error) {
	return c.lines(ctx, c.pythonBuild, "--definitions")
}

// EnvironmentVersion reports the interpreter version inside the environment name.
func (c *Client) EnvironmentVersion(ctx context.Context, name string) (string, error) {
	prefix, err := c.output(ctx, c.pyenv, "prefix", name)
	if err != nil {
		return "", err
	}

	python := filepath.Join(strings.TrimSpace(prefix), "bin", "python")
	out, err := c.output(ctx, python, "--version")
	if err != nil {
		return "", err
	}
	return parsePythonVersion(out), nil
}

// Install installs version unless it is already present.
func (c *Client) Install(ctx context.Context, version string) error {
	return c.stream(ctx, c.pyenv, "install", "--skip-existing", version)
}

// CreateVirtualenv creates the virtualenv name on top of version. With
// quiet set, the command's output is captured instead of shown.
func (c *Client) CreateVirtualenv(ctx context.Context, version, name string, quiet bool) error {
	if quiet {
		_, err := c.output(ctx, c.pyenv, "virtualenv", version, name)
		return err
	}
	return c.stream(ctx, c.pyenv, "virtualenv", version, name)
}

// DeleteVirtualenv removes the virtualenv name without prompting.
func (c *Client) DeleteVirtualenv(ctx context.Context, name string) error {
	return c.stream(ctx, c.pyenv, "virtualenv-delete", "-f", name)
}

// SetLocal writes name to the project's .python-version.
func (c *Client) SetLocal(ctx context.Context, name string) error {
	return c.stream(ctx, c.pyenv, "local", name)
}

func (c *Client) output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := c.runner.Output(ctx, name, args...)
	if err != nil {
		return "", commandError(name, args, err)
	}
	return string(out), nil
}

func (c *Client) lines(ctx context.Context, name string, args ...string) ([]string, error) {
	out, err := c.output(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (c *Client) stream(ctx context.Context, name string, args ...string) error {
	if err := c.runner.Stream(ctx, c.stdout, c.stderr, name, args...); err != nil {
		return commandError(name, args, err)
	}
	return nil
}

func commandError(name string, args []string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	cmdline := strings.TrimSpace(name + " " + strings.Join(args, " "))
	wrapped := autoenverrors.Wrap(autoenverrors.ErrTypeCommand, fmt.Sprintf("%s failed", cmdline), err)
	if errors.Is(err, exec.ErrNotFound) {
		wrapped.WithSuggestion(fmt.Sprintf("'%s' was not found in PATH, run 'autoenv doctor' to check your setup", name))
	}
	return wrapped
}

func parsePythonVersion(out string) string {
	if m := pythonVersionPattern.FindStringSubmatch(out); len(m) > 1 {
		return m[1]
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out), "Python "))
}
