package main

import (
	"github.com/spf13/cobra"
)

func newGenerateCmd(a *app) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "generate [reminder.json]",
		Short: "Generate the standalone reminder tab document",
		Long: `Renders the reminder tab widget (desktop tab and mobile floating button)
as a complete HTML document. Without a configuration file the default
configuration is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			cfg, err := readReminderConfig(path)
			if err != nil {
				return err
			}

			tk, checker := a.toolkit()
			defer checker.Close()

			return writeOutput(cmd.OutOrStdout(), outPath, tk.Generator.GenerateHTML(cfg))
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}
