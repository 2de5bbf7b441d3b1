package pyenv

import (
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// 提取版本号的正则表达式
var toolVersionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)pyenv(?:-virtualenv)?\s+v?(\d+\.\d+(?:\.\d+)?(?:-[^\s]+)?)`),
	regexp.MustCompile(`version\s+v?(\d+\.\d+(?:\.\d+)?(?:-[^\s]+)?)`),
	regexp.MustCompile(`(\d+\.\d+\.\d+(?:-[^\s]+)?)`),
	regexp.MustCompile(`(\d{8})`),
}

// Tools returns the tools autoenv depends on, with their minimum versions
// taken from minVersions (keyed by tool name).
func (c *Client) Tools(minVersions map[string]string) []Tool {
	return []Tool{
		{Name: "pyenv", Command: c.pyenv, Args: []string{"--version"}, MinVersion: minVersions["pyenv"]},
		{Name: "python-build", Command: c.pythonBuild, Args: []string{"--version"}, MinVersion: minVersions["python-build"]},
		{Name: "pyenv-virtualenv", Command: c.pyenv, Args: []string{"virtualenv", "--version"}, MinVersion: minVersions["pyenv-virtualenv"]},
	}
}

// CheckTool 检测工具是否安装以及版本是否满足要求
func (c *Client) CheckTool(ctx context.Context, tool Tool) ToolStatus {
	status := ToolStatus{
		Name:       tool.Name,
		MinVersion: tool.MinVersion,
	}

	output, err := c.runner.Output(ctx, tool.Command, tool.Args...)
	if err != nil {
		// 命令存在但执行失败时仍视为已安装
		if isMissingCommand(err) {
			return status
		}
	}
	status.Installed = true
	status.Version = ParseToolVersion(string(output))
	status.MeetsMinimum = MeetsMinimum(status.Version, tool.MinVersion)
	return status
}

// CheckTools checks every tool in order.
func (c *Client) CheckTools(ctx context.Context, tools []Tool) []ToolStatus {
	statuses := make([]ToolStatus, 0, len(tools))
	for _, tool := range tools {
		statuses = append(statuses, c.CheckTool(ctx, tool))
	}
	return statuses
}

// pyenv reports unknown plugins as "no such command".
func isMissingCommand(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "not found") || strings.Contains(msg, "no such command")
}

// ParseToolVersion extracts a version number from --version output.
func ParseToolVersion(output string) string {
	for _, pattern := range toolVersionPatterns {
		if m := pattern.FindStringSubmatch(output); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// MeetsMinimum reports whether current satisfies ">= minimum". An empty
// minimum always passes; an unparsable current version never does.
func MeetsMinimum(current, minimum string) bool {
	if minimum == "" {
		return true
	}
	constraint, err := semver.NewConstraint(">= " + minimum)
	if err != nil {
		return false
	}
	v, err := semver.NewVersion(current)
	if err != nil {
		return false
	}
	return constraint.Check(v)
}

// SuggestInstallCommand 建议安装命令
func SuggestInstallCommand(name string) []string {
	installCommands := map[string][]string{
		"pyenv": {
			"brew install pyenv",
			"curl https://pyenv.run | bash",
		},
		"python-build": {
			"git clone https://github.com/pyenv/pyenv.git && pyenv/plugins/python-build/install.sh",
			"pyenv update",
		},
		"pyenv-virtualenv": {
			"brew install pyenv-virtualenv",
			"git clone https://github.com/pyenv/pyenv-virtualenv.git $(pyenv root)/plugins/pyenv-virtualenv",
		},
	}

	if commands, exists := installCommands[name]; exists {
		return commands
	}
	return []string{}
}
