package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/penwyp/autoenv/internal/config"
	"github.com/penwyp/autoenv/internal/errors"
	"github.com/penwyp/autoenv/internal/pyenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------------- Mock 实现 ----------------

// fakeRunner 按命令行返回预设输出，并记录所有调用
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	key := strings.TrimSpace(name + " " + strings.Join(args, " "))
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return []byte(f.outputs[key]), nil
}

func (f *fakeRunner) Stream(_ context.Context, stdout, _ io.Writer, name string, args ...string) error {
	key := strings.TrimSpace(name + " " + strings.Join(args, " "))
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return err
	}
	_, _ = io.WriteString(stdout, f.outputs[key])
	return nil
}

const testDefinitions = "3.8.5\n3.8.9\n3.9.4\n3.10.2\n3.11-dev\npypy3.9-7.3.9\n"

// setupTest 注入 mock 依赖，项目目录名为 myproject
func setupTest(t *testing.T, files map[string]string) (*fakeRunner, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "myproject")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "config.yaml"))

	runner := &fakeRunner{
		outputs: map[string]string{
			"python-build --definitions":           testDefinitions,
			"pyenv versions --bare --skip-aliases": "3.9.4\n",
		},
		errs: map[string]error{},
	}

	origRunner, origLogger, origWorkDir := runnerProvider, loggerProvider, workDirProvider
	t.Cleanup(func() {
		runnerProvider, loggerProvider, workDirProvider = origRunner, origLogger, origWorkDir
	})
	runnerProvider = func(*zap.Logger) pyenv.CommandRunner { return runner }
	loggerProvider = func(bool) (*zap.Logger, error) { return zap.NewNop(), nil }
	workDirProvider = func() (string, error) { return dir, nil }

	return runner, dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// ------------------------------------------------

func TestRoot_Version(t *testing.T) {
	setupTest(t, nil)

	out, err := execute(t, "--version")

	require.NoError(t, err)
	assert.Equal(t, GetVersionString()+"\n", out)
}

func TestRoot_CreatesVirtualenvFromPyproject(t *testing.T) {
	runner, _ := setupTest(t, map[string]string{
		"pyproject.toml": "[project]\nrequires-python = \">=3.9\"\n",
	})

	out, err := execute(t)

	require.NoError(t, err)
	assert.Contains(t, out, "Using Python version 3.10.2")
	assert.Contains(t, out, "Creating new virtualenv 'myproject' with Python 3.10.2...")
	assert.Contains(t, out, "Setting local virtualenv 'myproject'...")
	assert.Equal(t, []string{
		"pyenv versions --bare --skip-aliases",
		"python-build --definitions",
		"pyenv install --skip-existing 3.10.2",
		"pyenv virtualenv 3.10.2 myproject",
		"pyenv local myproject",
	}, runner.calls)
}

func TestRoot_PythonOverrideAndNoLocal(t *testing.T) {
	runner, _ := setupTest(t, map[string]string{
		"setup.py": "setup(\n    python_requires='>=3.9',\n)\n",
	})

	out, err := execute(t, "--python", "3.8", "--name", "legacy", "--no-local")

	require.NoError(t, err)
	assert.Contains(t, out, "Creating new virtualenv 'legacy' with Python 3.8.9...")
	assert.NotContains(t, runner.calls, "pyenv local legacy")
}

func TestRoot_QuietCapturesVirtualenvOutput(t *testing.T) {
	runner, _ := setupTest(t, map[string]string{"runtime.txt": "python-3.9.4\n"})
	runner.outputs["pyenv virtualenv 3.9.4 myproject"] = "noisy virtualenv output\n"

	out, err := execute(t, "-qq")

	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, runner.calls, "pyenv virtualenv 3.9.4 myproject")
}

func TestRoot_ExistingEnvironment(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		expectedOut   string
		expectDeleted bool
	}{
		{
			name:        "lower without clear warns",
			expectedOut: "Desired Python (3.9.4) is later, use '--clear-if-lower' to upgrade.",
		},
		{
			name:          "clear if lower recreates",
			args:          []string{"--clear-if-lower"},
			expectedOut:   "Clearing previous virtualenv 'myproject'...",
			expectDeleted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, _ := setupTest(t, map[string]string{"setup.cfg": "[options]\npython_requires = 3.9.4\n"})
			runner.outputs["pyenv versions --bare --skip-aliases"] = "3.7.0\n3.9.4\nmyproject\n"
			runner.outputs["pyenv prefix myproject"] = "/pyenv/versions/myproject\n"
			runner.outputs[filepath.Join("/pyenv/versions/myproject", "bin", "python")+" --version"] = "Python 3.7.0\n"

			out, err := execute(t, tt.args...)

			require.NoError(t, err)
			assert.Contains(t, out, tt.expectedOut)
			if tt.expectDeleted {
				assert.Contains(t, runner.calls, "pyenv virtualenv-delete -f myproject")
			} else {
				assert.NotContains(t, runner.calls, "pyenv virtualenv-delete -f myproject")
			}
		})
	}
}

func TestRoot_ConfigDefaults(t *testing.T) {
	runner, _ := setupTest(t, map[string]string{"runtime.txt": "python-3.9.4\n"})
	configPath := filepath.Join(t.TempDir(), "autoenv.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("no_local = true\npyenv_command = \"pyenv\"\n"), 0644))

	_, err := execute(t, "--config", configPath)

	require.NoError(t, err)
	assert.NotContains(t, runner.calls, "pyenv local myproject")
}

func TestRoot_Errors(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		args     []string
		errType  errors.ErrorType
		exitCode int
	}{
		{
			name:     "unsupported specifier",
			files:    map[string]string{"pyproject.toml": "requires-python = \"~=3.8\"\n"},
			errType:  errors.ErrTypeUnsupportedSpecifier,
			exitCode: errors.ExitCodeUnsupportedSpecifier,
		},
		{
			name:     "override not available",
			args:     []string{"--python", "3.99"},
			errType:  errors.ErrTypeVersionNotAvailable,
			exitCode: errors.ExitCodeVersionNotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTest(t, tt.files)

			_, err := execute(t, tt.args...)

			require.Error(t, err)
			assert.Equal(t, tt.errType, errors.GetType(err))
			assert.Equal(t, tt.exitCode, errors.ExitCode(err))
		})
	}
}

func TestRoot_CommandFailure(t *testing.T) {
	runner, _ := setupTest(t, nil)
	runner.errs["pyenv install --skip-existing 3.10.2"] = fmt.Errorf("exit status 1")

	_, err := execute(t)

	require.Error(t, err)
	assert.Equal(t, errors.ExitCodeCommandFailed, errors.ExitCode(err))
	assert.NotContains(t, runner.calls, "pyenv virtualenv 3.10.2 myproject")
}

func TestRoot_InvalidConfig(t *testing.T) {
	setupTest(t, nil)
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte("{"), 0644))

	_, err := execute(t, "--config", configPath)

	require.Error(t, err)
	assert.Equal(t, errors.ExitCodeConfigError, errors.ExitCode(err))
	assert.Contains(t, errors.GetSuggestion(err), configPath)
}
