package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/penwyp/autoenv/internal/autoenv"
	"github.com/penwyp/autoenv/internal/config"
	"github.com/penwyp/autoenv/internal/detect"
	"github.com/penwyp/autoenv/internal/errors"
	"github.com/penwyp/autoenv/internal/logger"
	"github.com/penwyp/autoenv/internal/output"
	"github.com/penwyp/autoenv/internal/pyenv"
	"github.com/penwyp/autoenv/internal/resolver"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version holds the current version of autoenv
// This will be set at build time via ldflags
var version = "dev"

// GetVersionString returns the bare version, which pyenv plugins print for --version
func GetVersionString() string {
	return version
}

// 将外部依赖抽象为可替换的函数以便测试时注入 Mock。
// 若在运行时未被替换，则使用默认实现。
var (
	runnerProvider  func(logger *zap.Logger) pyenv.CommandRunner = defaultRunnerProvider
	loggerProvider  func(debug bool) (*zap.Logger, error)        = logger.New
	workDirProvider func() (string, error)                       = os.Getwd
)

func defaultRunnerProvider(logger *zap.Logger) pyenv.CommandRunner {
	return pyenv.NewExecRunner(logger)
}

// globalOptions are shared by every command.
type globalOptions struct {
	debug      bool
	configPath string
	quiet      int
}

type rootOptions struct {
	globalOptions
	name         string
	python       string
	version      bool
	clear        bool
	clearIfLower bool
	noLocal      bool
}

// app bundles what a command needs once flags and config are settled.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *pyenv.Client
	dir    string
	quiet  int
}

// NewRootCommand 创建根命令
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "autoenv",
		Short: "Create a pyenv virtualenv with the Python version your project asks for",
		Long: `autoenv picks the Python version for the current project and creates a
pyenv virtualenv named after the project directory.

The version comes from, in order:
- the --python flag
- requires-python in pyproject.toml
- python_requires in setup.py or setup.cfg
- the python-X.Y.Z pin in runtime.txt
- the newest released version python-build can install`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAutoenv(cmd, opts)
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug output for troubleshooting")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $AUTOENV_CONFIG or $XDG_CONFIG_HOME/pyenv-autoenv/config.yaml)")
	cmd.PersistentFlags().CountVarP(&opts.quiet, "quiet", "q", "print less; repeat to print only what is essential")

	cmd.Flags().StringVar(&opts.name, "name", "", "virtualenv name (default: name of the current directory)")
	cmd.Flags().StringVar(&opts.python, "python", "", "Python version or constraint to use instead of the project's")
	cmd.Flags().BoolVar(&opts.version, "version", false, "show version information")
	cmd.Flags().BoolVar(&opts.clear, "clear", false, "recreate the virtualenv if it already exists")
	cmd.Flags().BoolVar(&opts.clearIfLower, "clear-if-lower", false, "recreate the virtualenv if its Python is lower than the desired one")
	cmd.Flags().BoolVar(&opts.noLocal, "no-local", false, "do not run 'pyenv local' for the new virtualenv")

	cmd.AddCommand(NewDetectVersionCommand(&opts.globalOptions))
	cmd.AddCommand(NewDoctorCommand(&opts.globalOptions))

	return cmd
}

func Execute() error { return NewRootCommand().Execute() }

func ExecuteContext(ctx context.Context) error { return NewRootCommand().ExecuteContext(ctx) }

func runAutoenv(cmd *cobra.Command, opts *rootOptions) error {
	// Handle version flag
	if opts.version {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), GetVersionString())
		return nil
	}

	a, err := newApp(cmd, &opts.globalOptions)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	// 未显式指定的开关使用配置文件中的默认值
	clearIfLower := opts.clearIfLower
	if !cmd.Flags().Changed("clear-if-lower") {
		clearIfLower = a.cfg.ClearIfLower
	}
	noLocal := opts.noLocal
	if !cmd.Flags().Changed("no-local") {
		noLocal = a.cfg.NoLocal
	}

	res := resolver.New(a.client, detect.NewDirScanner(a.dir), a.logger)
	runner := autoenv.NewRunner(res, a.client, output.New(a.quiet, cmd.OutOrStdout()), a.logger)

	_, err = runner.Run(cmd.Context(), autoenv.Options{
		Name:         opts.name,
		Python:       opts.python,
		Clear:        opts.clear,
		ClearIfLower: clearIfLower,
		NoLocal:      noLocal,
		Dir:          a.dir,
	})
	return err
}

// newApp initializes the logger, loads the config and builds the pyenv client.
func newApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	// Initialize logger
	log, err := loggerProvider(opts.debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := loadConfig(opts.configPath, log)
	if err != nil {
		return nil, err
	}

	dir, err := workDirProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	quiet := opts.quiet
	if !cmd.Flags().Changed("quiet") {
		quiet = cfg.Quiet
	}

	client := pyenv.NewClient(runnerProvider(log),
		pyenv.WithCommands(cfg.PyenvCommand, cfg.PythonBuildCommand),
		pyenv.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		pyenv.WithLogger(log),
	)

	return &app{cfg: cfg, logger: log, client: client, dir: dir, quiet: quiet}, nil
}

func configManager(path string) (config.Manager, error) {
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, errors.Wrap(errors.ErrTypeConfig, "failed to locate config file", err)
		}
	}
	manager, err := config.NewManager(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrTypeConfig, "invalid config path", err)
	}
	return manager, nil
}

func loadConfig(path string, log *zap.Logger) (*config.Config, error) {
	manager, err := configManager(path)
	if err != nil {
		return nil, err
	}
	cfg, err := manager.Load()
	if err != nil {
		return nil, errors.Wrap(errors.ErrTypeConfig, "failed to load config", err).
			WithSuggestion(fmt.Sprintf("Fix or remove %s", manager.Path()))
	}
	log.Debug("Loaded config",
		zap.String("path", manager.Path()),
		zap.String("pyenv_command", cfg.PyenvCommand),
		zap.String("python_build_command", cfg.PythonBuildCommand))
	return cfg, nil
}
