package pyenv

import (
	"context"
	"io"
)

// CommandRunner 命令执行器接口
type CommandRunner interface {
	// Output runs the command and returns its stdout.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Stream runs the command with its output attached to stdout and stderr.
	Stream(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error
}

// Tool 描述一个需要检测的外部工具
type Tool struct {
	Name       string   // 展示名称 (pyenv, pyenv-virtualenv 等)
	Command    string   // 可执行文件
	Args       []string // 获取版本的参数
	MinVersion string   // 最低版本要求，空表示不限制
}

// ToolStatus 外部工具状态信息
type ToolStatus struct {
	Name         string // 工具名称
	Installed    bool   // 是否已安装
	Version      string // 版本号
	MinVersion   string // 最低版本要求
	MeetsMinimum bool   // 是否满足最低版本
}
