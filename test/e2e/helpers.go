package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHelper provides utilities for E2E tests
type TestHelper struct {
	t       *testing.T
	binPath string
	binDir  string
	logPath string
}

// NewTestHelper builds autoenv and prepares a directory for mock tools
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	if runtime.GOOS == "windows" {
		t.Skip("mock tools are bash scripts")
	}
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}

	binDir := t.TempDir()
	return &TestHelper{
		t:       t,
		binPath: buildBinary(t),
		binDir:  binDir,
		logPath: filepath.Join(binDir, "calls.log"),
	}
}

// buildBinary 构建 autoenv 可执行文件并返回路径。
func buildBinary(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "autoenv-bin")

	cmd := exec.Command("go", "build", "-o", binPath, "github.com/penwyp/autoenv")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build binary: %v, output: %s", err, string(out))
	}
	return binPath
}

// CreateProject creates a project directory with the given files
func (h *TestHelper) CreateProject(name string, files map[string]string) string {
	dir := filepath.Join(h.t.TempDir(), name)
	require.NoError(h.t, os.MkdirAll(dir, 0755))
	for filename, content := range files {
		require.NoError(h.t, os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644))
	}
	return dir
}

// MockCLIScript creates a mock CLI script with custom behavior
type MockCLIScript struct {
	Name     string
	Commands map[string]MockCommand
}

// MockCommand represents a mocked CLI command response
type MockCommand struct {
	Output   string
	Error    string
	ExitCode int
}

// CreateMockCLI writes an executable into the helper's bin directory. Every
// invocation is appended to the call log.
func (h *TestHelper) CreateMockCLI(script MockCLIScript) string {
	mockBin := filepath.Join(h.binDir, script.Name)

	var sb strings.Builder
	sb.WriteString("#!/usr/bin/env bash\n")
	sb.WriteString(`args="$*"` + "\n")
	fmt.Fprintf(&sb, "echo %q >> %q\n", script.Name+` $args`, h.logPath)
	sb.WriteString(`case "$args" in` + "\n")

	// 固定顺序，便于排查生成的脚本
	patterns := make([]string, 0, len(script.Commands))
	for pattern := range script.Commands {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)

	for _, pattern := range patterns {
		cmd := script.Commands[pattern]
		fmt.Fprintf(&sb, "  %q)\n", pattern)
		if cmd.Output != "" {
			fmt.Fprintf(&sb, "    printf '%%s\\n' %s\n", shellQuote(cmd.Output))
		}
		if cmd.Error != "" {
			fmt.Fprintf(&sb, "    printf '%%s\\n' %s >&2\n", shellQuote(cmd.Error))
		}
		fmt.Fprintf(&sb, "    exit %d\n    ;;\n", cmd.ExitCode)
	}

	sb.WriteString(`  *)
    echo "Unknown command: $args" >&2
    exit 1
    ;;
esac
`)

	require.NoError(h.t, os.WriteFile(mockBin, []byte(sb.String()), 0755))
	return mockBin
}

// CreateMockPython creates <prefix>/bin/python reporting version
func (h *TestHelper) CreateMockPython(version string) string {
	prefix := filepath.Join(h.t.TempDir(), "venv")
	bin := filepath.Join(prefix, "bin")
	require.NoError(h.t, os.MkdirAll(bin, 0755))
	script := fmt.Sprintf("#!/usr/bin/env bash\necho 'Python %s'\n", version)
	require.NoError(h.t, os.WriteFile(filepath.Join(bin, "python"), []byte(script), 0755))
	return prefix
}

// RunAutoenv executes autoenv in dir with the mock tools first in PATH
func (h *TestHelper) RunAutoenv(dir string, args ...string) (string, error) {
	cmd := exec.Command(h.binPath, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"PATH="+h.binDir+string(os.PathListSeparator)+os.Getenv("PATH"),
		"AUTOENV_CONFIG="+filepath.Join(h.binDir, "config.yaml"),
		"NO_COLOR=1",
	)

	out, err := cmd.CombinedOutput()
	return string(out), err
}

// Calls returns the logged mock tool invocations in order
func (h *TestHelper) Calls() []string {
	data, err := os.ReadFile(h.logPath)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(h.t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

// AssertExitCode checks the exit code of an exec.ExitError
func (h *TestHelper) AssertExitCode(err error, expectedCode int) {
	exitErr, ok := err.(*exec.ExitError)
	require.True(h.t, ok, "expected exec.ExitError, got %T", err)
	require.Equal(h.t, expectedCode, exitErr.ExitCode())
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
