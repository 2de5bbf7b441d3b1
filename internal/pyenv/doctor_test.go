package pyenv

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestClient_Tools(t *testing.T) {
	client := NewClient(new(MockCommandRunner), WithCommands("/usr/local/bin/pyenv", ""))
	tools := client.Tools(map[string]string{"pyenv": "2.0.0"})

	assert.Len(t, tools, 3)
	assert.Equal(t, "pyenv", tools[0].Name)
	assert.Equal(t, "/usr/local/bin/pyenv", tools[0].Command)
	assert.Equal(t, "2.0.0", tools[0].MinVersion)
	assert.Equal(t, "python-build", tools[1].Command)
	assert.Equal(t, "", tools[1].MinVersion)
	assert.Equal(t, []string{"virtualenv", "--version"}, tools[2].Args)
}

func TestClient_CheckTool(t *testing.T) {
	tests := []struct {
		name     string
		tool     Tool
		output   []byte
		err      error
		expected ToolStatus
	}{
		{
			name:   "pyenv installed and new enough",
			tool:   Tool{Name: "pyenv", Command: "pyenv", Args: []string{"--version"}, MinVersion: "2.0.0"},
			output: []byte("pyenv 2.3.36\n"),
			expected: ToolStatus{
				Name: "pyenv", Installed: true, Version: "2.3.36", MinVersion: "2.0.0", MeetsMinimum: true,
			},
		},
		{
			name:   "pyenv too old",
			tool:   Tool{Name: "pyenv", Command: "pyenv", Args: []string{"--version"}, MinVersion: "2.0.0"},
			output: []byte("pyenv 1.2.27\n"),
			expected: ToolStatus{
				Name: "pyenv", Installed: true, Version: "1.2.27", MinVersion: "2.0.0", MeetsMinimum: false,
			},
		},
		{
			name:   "virtualenv plugin",
			tool:   Tool{Name: "pyenv-virtualenv", Command: "pyenv", Args: []string{"virtualenv", "--version"}},
			output: []byte("pyenv-virtualenv 1.2.1 (python -m venv)\n"),
			expected: ToolStatus{
				Name: "pyenv-virtualenv", Installed: true, Version: "1.2.1", MeetsMinimum: true,
			},
		},
		{
			name:   "python-build date version",
			tool:   Tool{Name: "python-build", Command: "python-build", Args: []string{"--version"}},
			output: []byte("python-build 20180424\n"),
			expected: ToolStatus{
				Name: "python-build", Installed: true, Version: "20180424", MeetsMinimum: true,
			},
		},
		{
			name:     "binary missing",
			tool:     Tool{Name: "pyenv", Command: "pyenv", Args: []string{"--version"}},
			err:      &exec.Error{Name: "pyenv", Err: exec.ErrNotFound},
			expected: ToolStatus{Name: "pyenv"},
		},
		{
			name:     "plugin missing",
			tool:     Tool{Name: "pyenv-virtualenv", Command: "pyenv", Args: []string{"virtualenv", "--version"}},
			err:      fmt.Errorf("exit status 1: pyenv: no such command `virtualenv'"),
			expected: ToolStatus{Name: "pyenv-virtualenv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRunner := new(MockCommandRunner)
			mockRunner.On("Output", mock.Anything, tt.tool.Command, tt.tool.Args).Return(tt.output, tt.err)

			status := NewClient(mockRunner).CheckTool(context.Background(), tt.tool)

			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestClient_CheckTools(t *testing.T) {
	mockRunner := new(MockCommandRunner)
	mockRunner.On("Output", mock.Anything, "pyenv", []string{"--version"}).Return([]byte("pyenv 2.3.36"), nil)
	mockRunner.On("Output", mock.Anything, "python-build", []string{"--version"}).Return([]byte("python-build 2.3.36"), nil)
	mockRunner.On("Output", mock.Anything, "pyenv", []string{"virtualenv", "--version"}).
		Return(nil, fmt.Errorf("pyenv: no such command `virtualenv'"))

	client := NewClient(mockRunner)
	statuses := client.CheckTools(context.Background(), client.Tools(nil))

	assert.Len(t, statuses, 3)
	assert.True(t, statuses[0].Installed)
	assert.Equal(t, "2.3.36", statuses[1].Version)
	assert.False(t, statuses[2].Installed)
}

func TestMeetsMinimum(t *testing.T) {
	tests := []struct {
		current, minimum string
		expected         bool
	}{
		{"2.3.36", "", true},
		{"2.3.36", "2.0", true},
		{"2.0.0", "2.0.0", true},
		{"1.2.27", "2.0.0", false},
		{"", "2.0.0", false},
		{"2.3.36", "not-a-version", false},
	}

	for _, tt := range tests {
		t.Run(tt.current+">="+tt.minimum, func(t *testing.T) {
			assert.Equal(t, tt.expected, MeetsMinimum(tt.current, tt.minimum))
		})
	}
}

func TestSuggestInstallCommand(t *testing.T) {
	assert.NotEmpty(t, SuggestInstallCommand("pyenv"))
	assert.NotEmpty(t, SuggestInstallCommand("pyenv-virtualenv"))
	assert.Empty(t, SuggestInstallCommand("unknown"))
}
