package cmd

import (
	"fmt"
	"strings"

	"github.com/penwyp/autoenv/internal/detect"
	"github.com/penwyp/autoenv/internal/resolver"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewDetectVersionCommand 创建 detect-version 命令
func NewDetectVersionCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "detect-version [VERSION]",
		Short: "Print the Python version the project resolves to",
		Long: `Print the installable Python version that VERSION, or the constraint declared
by the project, resolves to. Existing virtualenvs are not consulted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			override := ""
			if len(args) > 0 {
				override = strings.TrimSpace(args[0])
			}

			definitions, err := a.client.Definitions(cmd.Context())
			if err != nil {
				return err
			}

			res, err := resolver.Resolve(resolver.Input{
				Override:    override,
				Definitions: definitions,
				Declared:    detect.NewDirScanner(a.dir).FindSpec,
			})
			if err != nil {
				return err
			}

			a.logger.Debug("Detected version",
				zap.String("dir", a.dir),
				zap.String("override", override),
				zap.String("desired", res.Desired))
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.Desired)
			return nil
		},
	}
}
