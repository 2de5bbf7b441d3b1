// Package autoenv creates, clears and activates the project virtualenv.
package autoenv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/penwyp/autoenv/internal/output"
	"github.com/penwyp/autoenv/internal/resolver"
	"go.uber.org/zap"
)

// VersionResolver decides the Python version for an environment.
type VersionResolver interface {
	Resolve(ctx context.Context, name, override string) (resolver.Result, error)
}

// Environment performs the pyenv side effects.
type Environment interface {
	Install(ctx context.Context, version string) error
	CreateVirtualenv(ctx context.Context, version, name string, quiet bool) error
	DeleteVirtualenv(ctx context.Context, name string) error
	SetLocal(ctx context.Context, name string) error
}

// Options mirrors the command line flags.
type Options struct {
	// Name defaults to the base name of Dir.
	Name string
	// Python overrides any declared constraint.
	Python       string
	Clear        bool
	ClearIfLower bool
	NoLocal      bool
	// Dir is the project directory; empty means the working directory.
	Dir string
}

// Outcome reports what Run did.
type Outcome struct {
	Name     string
	Versions resolver.Result
	Cleared  bool
	// Installed is set when the interpreter had to be installed first.
	Installed bool
	Created   bool
	LocalSet  bool
}

// Runner wires the resolver, pyenv and the printer together.
type Runner struct {
	resolver VersionResolver
	env      Environment
	out      *output.Printer
	logger   *zap.Logger
}

// NewRunner creates a Runner.
func NewRunner(r VersionResolver, env Environment, out *output.Printer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{resolver: r, env: env, out: out, logger: logger}
}

// EnvironmentName returns name, or the base name of dir (the working
// directory when dir is empty).
func EnvironmentName(name, dir string) (string, error) {
	if name != "" {
		return name, nil
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return filepath.Base(abs), nil
}

// Run resolves the version and brings the virtualenv in line with it. An
// existing environment is left alone unless clearing was requested.
func (r *Runner) Run(ctx context.Context, opts Options) (Outcome, error) {
	name, err := EnvironmentName(opts.Name, opts.Dir)
	if err != nil {
		return Outcome{}, err
	}

	versions, err := r.resolver.Resolve(ctx, name, opts.Python)
	if err != nil {
		return Outcome{}, err
	}
	outcome := Outcome{Name: name, Versions: versions}

	if versions.IsInstalled(name) {
		recreate := opts.Clear || (opts.ClearIfLower && versions.CurrentIsLower)

		if !recreate {
			if versions.CurrentIsLower {
				r.out.Yell("Virtualenv '%s' (%s) already exists.", name, versions.Current)
				r.out.Yell("Desired Python (%s) is later, use '--clear-if-lower' to upgrade.", versions.Desired)
			} else {
				r.out.Say("Virtualenv '%s' (%s) already exists. Use '--clear' to recreate it.", name, versions.Current)
			}
			return outcome, nil
		}

		r.out.Say("Clearing previous virtualenv '%s'...", name)
		if err := r.env.DeleteVirtualenv(ctx, name); err != nil {
			return outcome, err
		}
		outcome.Cleared = true
	}

	if !versions.IsInstalled(versions.Desired) {
		r.out.Shout("Using Python version %s", versions.Desired)
		if err := r.env.Install(ctx, versions.Desired); err != nil {
			return outcome, err
		}
		outcome.Installed = true
	}

	r.out.Yell("Creating new virtualenv '%s' with Python %s...", name, versions.Desired)
	if err := r.env.CreateVirtualenv(ctx, versions.Desired, name, r.out.Level() > 0); err != nil {
		return outcome, err
	}
	outcome.Created = true

	if opts.NoLocal {
		r.logger.Debug("Skipping pyenv local", zap.String("name", name))
		return outcome, nil
	}
	r.out.Say("Setting local virtualenv '%s'...", name)
	if err := r.env.SetLocal(ctx, name); err != nil {
		return outcome, err
	}
	outcome.LocalSet = true

	return outcome, nil
}
