package main

import (
	"fmt"
	"os"

	"github.com/penwyp/autoenv/cmd"
	"github.com/penwyp/autoenv/internal/errors"
)

// main 为 CLI 入口，调用 cmd.Execute。
func main() {
	if err := cmd.Execute(); err != nil {
		// 标准化错误处理：按错误类型输出并使用对应的退出码
		handler := errors.NewErrorHandler()
		report := handler.Handle(err)
		_, _ = fmt.Fprint(os.Stderr, handler.FormatReport(report))
		os.Exit(report.ExitCode)
	}
}
