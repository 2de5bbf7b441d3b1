// Package resolver decides which Python version backs a virtualenv.
//
// The decision combines, in order of precedence, an explicit override, the
// constraint the project declares, and the newest released definition. An
// existing environment keeps its version unless it is lower than the
// declared constraint.
package resolver

import (
	"context"
	"slices"

	"github.com/penwyp/autoenv/internal/errors"
	"github.com/penwyp/autoenv/internal/pyversion"
	"go.uber.org/zap"
)

// Inventory reports what pyenv knows about. Implementations only query.
type Inventory interface {
	// InstalledVersions lists installed interpreters and virtualenv names.
	InstalledVersions(ctx context.Context) ([]string, error)
	// Definitions lists the versions python-build can install.
	Definitions(ctx context.Context) ([]string, error)
	// EnvironmentVersion is the Python version inside an existing environment.
	EnvironmentVersion(ctx context.Context, name string) (string, error)
}

// SpecFinder returns the constraint a project declares, or nil.
type SpecFinder interface {
	FindSpec() (*pyversion.Spec, error)
}

// Input is everything a resolution depends on.
type Input struct {
	Name        string
	Override    string
	Installed   []string
	Definitions []string
	// CurrentVersion is called only when Name is in Installed.
	CurrentVersion func(name string) (string, error)
	// Declared is not called when Override is set.
	Declared func() (*pyversion.Spec, error)
}

// Result is the outcome of a resolution.
type Result struct {
	// Current is the version of the existing environment; empty when absent.
	Current string
	Desired string
	// CurrentIsLower is set when Current exists and is below the declared constraint.
	CurrentIsLower bool
	Installed      []string
}

// HasCurrent reports whether an environment with the requested name exists.
func (r Result) HasCurrent() bool {
	return r.Current != ""
}

// IsInstalled reports whether name is among the installed versions.
func (r Result) IsInstalled(name string) bool {
	return slices.Contains(r.Installed, name)
}

// Resolve runs the resolution over in. It does no I/O of its own.
func Resolve(in Input) (Result, error) {
	res := Result{Installed: in.Installed}

	if in.CurrentVersion != nil && slices.Contains(in.Installed, in.Name) {
		current, err := in.CurrentVersion(in.Name)
		if err != nil {
			return Result{}, err
		}
		res.Current = current
	}

	if in.Override != "" {
		spec, err := pyversion.Parse(in.Override)
		if err != nil {
			return Result{}, err
		}
		desired, ok := pyversion.Concrete(spec, in.Definitions)
		if !ok {
			return Result{}, errors.VersionNotAvailable(in.Override)
		}
		res.Desired = desired
		return res, nil
	}

	var spec *pyversion.Spec
	if in.Declared != nil {
		var err error
		if spec, err = in.Declared(); err != nil {
			return Result{}, err
		}
	}

	if spec != nil {
		if res.HasCurrent() && !spec.IsLower(res.Current) {
			res.Desired = res.Current
			return res, nil
		}
		res.CurrentIsLower = res.HasCurrent()

		desired, ok := pyversion.Concrete(*spec, in.Definitions)
		if !ok {
			requested := spec.Optimal
			if requested == "" {
				requested = spec.Raw
			}
			return Result{}, errors.VersionNotAvailable(requested)
		}
		res.Desired = desired
		return res, nil
	}

	latest, ok := pyversion.Latest(in.Definitions)
	if !ok {
		return Result{}, errors.NoVersionsFound()
	}
	res.Desired = latest
	return res, nil
}

// Resolver binds Resolve to live collaborators.
type Resolver struct {
	inventory Inventory
	finder    SpecFinder
	logger    *zap.Logger
}

// New creates a Resolver. finder may be nil when no project metadata
// should be consulted.
func New(inventory Inventory, finder SpecFinder, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{inventory: inventory, finder: finder, logger: logger}
}

// Resolve gathers the inventory and resolves the version for the
// environment name. override, when non-empty, replaces any declared constraint.
func (r *Resolver) Resolve(ctx context.Context, name, override string) (Result, error) {
	installed, err := r.inventory.InstalledVersions(ctx)
	if err != nil {
		return Result{}, err
	}
	definitions, err := r.inventory.Definitions(ctx)
	if err != nil {
		return Result{}, err
	}

	in := Input{
		Name:        name,
		Override:    override,
		Installed:   installed,
		Definitions: definitions,
		CurrentVersion: func(name string) (string, error) {
			return r.inventory.EnvironmentVersion(ctx, name)
		},
	}
	if r.finder != nil {
		in.Declared = r.declared
	}

	res, err := Resolve(in)
	if err != nil {
		return Result{}, err
	}

	r.logger.Debug("Resolved python version",
		zap.String("name", name),
		zap.String("override", override),
		zap.String("current", res.Current),
		zap.String("desired", res.Desired),
		zap.Bool("current_is_lower", res.CurrentIsLower),
		zap.Int("definitions", len(definitions)))
	return res, nil
}

func (r *Resolver) declared() (*pyversion.Spec, error) {
	spec, err := r.finder.FindSpec()
	if err != nil {
		return nil, err
	}
	if spec != nil {
		r.logger.Debug("Found declared constraint",
			zap.String("raw", spec.Raw),
			zap.Stringer("operator", spec.Operator),
			zap.String("optimal", spec.Optimal))
	}
	return spec, nil
}
