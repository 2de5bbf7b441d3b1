package errors

import (
	"errors"
	"fmt"
)

// ErrorType 定义错误类型
type ErrorType int

const (
	// ErrTypeUnknown 未知错误
	ErrTypeUnknown ErrorType = iota
	// ErrTypeUnsupportedSpecifier 无法识别的版本约束
	ErrTypeUnsupportedSpecifier
	// ErrTypeVersionNotAvailable 请求的版本没有可安装的定义
	ErrTypeVersionNotAvailable
	// ErrTypeNoVersions 没有任何正式发布的版本
	ErrTypeNoVersions
	// ErrTypeCommand 外部命令 (pyenv, python-build) 执行失败
	ErrTypeCommand
	// ErrTypeConfig 配置相关错误
	ErrTypeConfig
	// ErrTypeValidation 验证错误
	ErrTypeValidation
)

// AutoenvError 统一错误结构
type AutoenvError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	// Value is the offending input (specifier text, requested version).
	Value string

	sentinel bool
}

// Error 实现 error 接口
func (e *AutoenvError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap 支持 errors.Is 和 errors.As
func (e *AutoenvError) Unwrap() error {
	return e.Cause
}

// Is matches any error of the same type against a sentinel.
func (e *AutoenvError) Is(target error) bool {
	t, ok := target.(*AutoenvError)
	if !ok || !t.sentinel {
		return false
	}
	return t.Type == e.Type
}

// WithSuggestion 添加解决建议
func (e *AutoenvError) WithSuggestion(suggestion string) *AutoenvError {
	e.Suggestion = suggestion
	return e
}

// New 创建新的 AutoenvError
func New(errType ErrorType, message string) *AutoenvError {
	return &AutoenvError{
		Type:    errType,
		Message: message,
	}
}

// Wrap 包装已有错误
func Wrap(errType ErrorType, message string, cause error) *AutoenvError {
	return &AutoenvError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

func sentinel(errType ErrorType, message string) *AutoenvError {
	return &AutoenvError{Type: errType, Message: message, sentinel: true}
}

// 预定义的哨兵错误，配合 errors.Is 使用
var (
	ErrUnsupportedSpecifier = sentinel(ErrTypeUnsupportedSpecifier, "unsupported version specifier")
	ErrVersionNotAvailable  = sentinel(ErrTypeVersionNotAvailable, "python version not available")
	ErrNoVersionsFound      = sentinel(ErrTypeNoVersions, "no usable python versions found")
)

// UnsupportedSpecifier reports a constraint that matches none of the known shapes.
func UnsupportedSpecifier(text string) *AutoenvError {
	return &AutoenvError{
		Type:       ErrTypeUnsupportedSpecifier,
		Message:    fmt.Sprintf("unsupported version specifier: %s", text),
		Value:      text,
		Suggestion: "Supported forms are X.Y.Z, >X.Y, >=X.Y, <=X.Y and <X.Y",
	}
}

// VersionNotAvailable reports a requested version with no matching definition.
func VersionNotAvailable(version string) *AutoenvError {
	return &AutoenvError{
		Type:       ErrTypeVersionNotAvailable,
		Message:    fmt.Sprintf("Python '%s' not available", version),
		Value:      version,
		Suggestion: "List installable versions with 'python-build --definitions'",
	}
}

// NoVersionsFound reports that no fully released version can be installed.
func NoVersionsFound() *AutoenvError {
	return &AutoenvError{
		Type:       ErrTypeNoVersions,
		Message:    "couldn't find any usable Python versions",
		Suggestion: "Update python-build (pyenv update) to refresh the definitions",
	}
}

// Is 检查是否为特定错误
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As 尝试转换为特定错误类型
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetType 获取错误类型
func GetType(err error) ErrorType {
	var autoenvErr *AutoenvError
	if errors.As(err, &autoenvErr) {
		return autoenvErr.Type
	}
	return ErrTypeUnknown
}

// GetSuggestion 获取错误建议
func GetSuggestion(err error) string {
	var autoenvErr *AutoenvError
	if errors.As(err, &autoenvErr) {
		return autoenvErr.Suggestion
	}
	return ""
}

// FormatError 格式化错误输出
func FormatError(err error) string {
	var autoenvErr *AutoenvError
	if !errors.As(err, &autoenvErr) {
		return err.Error()
	}

	msg := err.Error()
	if autoenvErr.Suggestion != "" {
		msg += fmt.Sprintf("\n💡 %s", autoenvErr.Suggestion)
	}

	return msg
}
