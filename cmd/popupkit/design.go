package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnana997/popupkit/pkg/registry"
)

func newDesignCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "design",
		Short: "Inspect and edit email-editor design documents",
	}

	cmd.AddCommand(newDesignDetectCmd(a))
	cmd.AddCommand(newDesignUpdateCmd(a))
	cmd.AddCommand(newDesignInjectCmd(a))

	return cmd
}

func newDesignDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <design.json>",
		Short: "List the components embedded in a design document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading design: %w", err)
			}

			tk, checker := a.toolkit()
			defer checker.Close()

			found, err := tk.Detect(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), found)
		},
	}
}

func newDesignUpdateCmd(a *app) *cobra.Command {
	var (
		blockID   string
		htmlPath  string
		propsJSON string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "update <design.json>",
		Short: "Replace or re-render one html block of a design document",
		Long: `Updates the html block --block of a design document. With --html the
block markup is replaced by the file's contents; with --props the embedded
component is re-rendered with the overrides applied to its current props.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (htmlPath == "") == (propsJSON == "") {
				return fmt.Errorf("exactly one of --html or --props is required")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading design: %w", err)
			}

			var (
				html  *string
				props registry.Props
			)
			if htmlPath != "" {
				b, err := os.ReadFile(htmlPath)
				if err != nil {
					return fmt.Errorf("reading html: %w", err)
				}
				s := string(b)
				html = &s
			} else if err := json.Unmarshal([]byte(propsJSON), &props); err != nil {
				return fmt.Errorf("invalid --props: %w", err)
			}

			tk, checker := a.toolkit()
			defer checker.Close()

			out, err := tk.Update(data, blockID, html, props)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return writeOutput(cmd.OutOrStdout(), outPath, string(out))
		},
	}

	cmd.Flags().StringVar(&blockID, "block", "", "id of the html block to update")
	cmd.Flags().StringVar(&htmlPath, "html", "", "file with the new block markup")
	cmd.Flags().StringVar(&propsJSON, "props", "", "JSON object of prop overrides")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("block")
	return cmd
}

func newDesignInjectCmd(a *app) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "inject <design.json> <component-id>",
		Short: "Append a row holding a component to a design document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading design: %w", err)
			}

			tk, checker := a.toolkit()
			defer checker.Close()

			out, err := tk.Inject(data, args[1])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return writeOutput(cmd.OutOrStdout(), outPath, string(out))
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}
