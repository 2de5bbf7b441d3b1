package errors

import (
	"context"
	"errors"
	"strings"

	"github.com/fatih/color"
)

// ErrorHandler 错误处理器
type ErrorHandler struct{}

// NewErrorHandler 创建新的错误处理器
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle 将错误映射为结构化的 Report
func (h *ErrorHandler) Handle(err error) Report {
	if err == nil {
		return Report{ExitCode: ExitCodeSuccess}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Report{
			Message:  "Timeout exceeded",
			ExitCode: ExitCodeTimeout,
		}
	}

	var autoenvErr *AutoenvError
	if !errors.As(err, &autoenvErr) {
		return Report{
			Message:  err.Error(),
			ExitCode: ExitCodeGenericError,
		}
	}

	report := Report{
		Message:    err.Error(),
		Suggestion: autoenvErr.Suggestion,
		ExitCode:   ExitCode(err),
	}
	// 命令失败时，把外部命令的输出作为详情单独展示
	if autoenvErr.Type == ErrTypeCommand && autoenvErr.Cause != nil {
		report.Message = autoenvErr.Message
		report.Details = strings.TrimSpace(autoenvErr.Cause.Error())
	}
	return report
}

// ExitCode 根据错误类型返回退出码
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ExitCodeTimeout
	}
	switch GetType(err) {
	case ErrTypeUnsupportedSpecifier:
		return ExitCodeUnsupportedSpecifier
	case ErrTypeVersionNotAvailable:
		return ExitCodeVersionNotAvailable
	case ErrTypeNoVersions:
		return ExitCodeNoVersions
	case ErrTypeCommand:
		return ExitCodeCommandFailed
	case ErrTypeConfig:
		return ExitCodeConfigError
	default:
		return ExitCodeGenericError
	}
}

// FormatReport 格式化错误信息为用户友好的输出
func (h *ErrorHandler) FormatReport(report Report) string {
	var sb strings.Builder

	// 错误消息（红色）
	sb.WriteString(color.RedString("Error: %s\n", report.Message))

	// 详细信息（如果有）
	if report.Details != "" {
		sb.WriteString(color.YellowString("Details: %s\n", report.Details))
	}

	// 建议（如果有）
	if report.Suggestion != "" {
		sb.WriteString("\n")
		sb.WriteString(report.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}
