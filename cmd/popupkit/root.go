package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/popupkit/pkg/scriptcheck"
	"github.com/gnana997/popupkit/pkg/toolkit"
	"github.com/gnana997/popupkit/pkg/util"
)

// Version is set via ldflags at build time.
var Version = "0.1.0-dev"

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *ProjectConfig
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "popupkit",
		Short: "Popup coupon component toolkit",
		Long: `popupkit renders custom popup components, keeps them in sync inside
email-editor design documents, and merges the reminder tab widget into
popup templates. It serves the same operations to AI agents over MCP
and to editors over a local HTTP preview server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "init" {
				return nil
			}
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath, "project config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text, json")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newPreviewCmd(a))
	root.AddCommand(newMergeCmd(a))
	root.AddCommand(newBatchCmd(a))
	root.AddCommand(newWatchCmd(a))
	root.AddCommand(newComponentsCmd(a))
	root.AddCommand(newDesignCmd(a))
	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newLintCmd(a))
	root.AddCommand(newSetupCmd())

	return root
}

// load reads the project config and builds the logger. The config file is
// only required when --config was given explicitly.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := loadProjectConfig(a.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}

	level, err := util.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	format, err := util.ParseLogFormat(cfg.Log.Format)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = util.NewLogger(util.LoggerConfig{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

// toolkit builds a toolkit with a script checker attached. The returned
// checker must be closed by the caller.
func (a *app) toolkit() (*toolkit.Toolkit, *scriptcheck.Checker) {
	checker := scriptcheck.NewChecker(a.cfg.Workers, a.logger)
	tk := toolkit.New(toolkit.Config{
		CacheSize: a.cfg.CacheSize,
		Checker:   checker,
		Logger:    a.logger,
	})
	return tk, checker
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of popupkit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "popupkit %s\n", Version)
		},
	}
}

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default project config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeProjectConfig(a.configPath, defaultProjectConfig(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", a.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}
