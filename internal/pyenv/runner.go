package pyenv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	logger *zap.Logger
}

// NewExecRunner creates an ExecRunner that logs every command at debug level.
func NewExecRunner(logger *zap.Logger) *ExecRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{logger: logger}
}

// Output returns stdout. When the command exits non-zero, its stderr is
// appended to the error.
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.logger.Debug("Running command",
		zap.String("command", name),
		zap.Strings("args", args))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	output, err := cmd.Output()

	r.logger.Debug("Command output",
		zap.Int("output_length", len(output)),
		zap.Error(err),
		zap.String("output", func() string {
			if len(output) > 0 && len(output) < 1000 {
				return string(output)
			}
			return fmt.Sprintf("<%d bytes>", len(output))
		}()))

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return output, fmt.Errorf("%w: %s", err, msg)
		}
	}
	return output, err
}

// Stream runs the command with its output attached to the given writers.
func (r *ExecRunner) Stream(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	r.logger.Debug("Running command",
		zap.String("command", name),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()
	if err != nil {
		r.logger.Debug("Command failed", zap.String("command", name), zap.Error(err))
	}
	return err
}
