package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/penwyp/autoenv/internal/errors"
	"github.com/penwyp/autoenv/internal/output"
	"github.com/penwyp/autoenv/internal/pyenv"
	"github.com/spf13/cobra"
)

// NewDoctorCommand 创建 doctor 命令
func NewDoctorCommand(opts *globalOptions) *cobra.Command {
	var initConfig bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that pyenv, python-build and pyenv-virtualenv are usable",
		Long: `Check that the external tools autoenv drives are installed and meet the
minimum versions from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initConfig {
				if err := writeDefaultConfig(cmd, opts.configPath); err != nil {
					return err
				}
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			out := output.New(a.quiet, cmd.OutOrStdout())
			out.Status("Checking tools...", false)

			statuses := a.client.CheckTools(cmd.Context(), a.client.Tools(a.cfg.MinVersions))

			// 输出表格
			_, _ = fmt.Fprint(cmd.OutOrStdout(), formatToolStatusTable(statuses))

			// 输出安装建议
			var missing []string
			for _, status := range statuses {
				if status.Installed && status.MeetsMinimum {
					continue
				}
				missing = append(missing, status.Name)
				suggestions := pyenv.SuggestInstallCommand(status.Name)
				if len(suggestions) == 0 {
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", status.Name)
				for _, suggestion := range suggestions {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", suggestion)
				}
			}

			if len(missing) > 0 {
				return errors.New(errors.ErrTypeValidation,
					fmt.Sprintf("missing or outdated tools: %s", strings.Join(missing, ", ")))
			}
			out.Status("All tools found", true)
			return nil
		},
	}

	cmd.Flags().BoolVar(&initConfig, "init-config", false, "write a default config file if none exists")
	return cmd
}

func writeDefaultConfig(cmd *cobra.Command, path string) error {
	manager, err := configManager(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(manager.Path()); err == nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", manager.Path())
		return nil
	}
	if err := manager.CreateDefaultConfig(); err != nil {
		return errors.Wrap(errors.ErrTypeConfig, "failed to write default config", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", manager.Path())
	return nil
}

// formatToolStatusTable 格式化工具状态表格
func formatToolStatusTable(statuses []pyenv.ToolStatus) string {
	var sb strings.Builder

	// 使用标准库的tabwriter
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	// 打印表头
	_, _ = fmt.Fprintf(w, "Tool\tStatus\tVersion\tMinimum\n")
	_, _ = fmt.Fprintf(w, "----\t------\t-------\t-------\n")

	// 打印数据行
	for _, status := range statuses {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			status.Name,
			formatToolStatus(status),
			orDash(status.Version),
			orDash(status.MinVersion),
		)
	}

	_ = w.Flush()
	return sb.String()
}

// formatToolStatus 格式化带颜色的工具状态
func formatToolStatus(status pyenv.ToolStatus) string {
	switch {
	case !status.Installed:
		return color.RedString("✗ Not installed")
	case !status.MeetsMinimum:
		return color.YellowString("✗ Outdated")
	default:
		return color.GreenString("✓ OK")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
