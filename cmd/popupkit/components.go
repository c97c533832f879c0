package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnana997/popupkit/pkg/registry"
)

func newComponentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "components",
		Aliases: []string{"component"},
		Short:   "List, inspect and render registered components",
	}

	cmd.AddCommand(newComponentsListCmd(a))
	cmd.AddCommand(newComponentsInspectCmd(a))
	cmd.AddCommand(newComponentsSearchCmd(a))
	cmd.AddCommand(newComponentsRenderCmd(a))

	return cmd
}

func newComponentsListCmd(a *app) *cobra.Command {
	var (
		category   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tk, checker := a.toolkit()
			defer checker.Close()

			comps := tk.Components(category)
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), comps)
			}
			printComponentTable(cmd.OutOrStdout(), comps)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category (engagement, commerce, layout)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	return cmd
}

func newComponentsInspectCmd(a *app) *cobra.Command {
	var (
		jsonOutput bool
		showHTML   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <component-id>",
		Short: "Show a component's props and default rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tk, checker := a.toolkit()
			defer checker.Close()

			comp, err := tk.Component(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), comp)
			}
			printComponentHuman(cmd.OutOrStdout(), comp, showHTML)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().BoolVar(&showHTML, "html", false, "include the default HTML")
	return cmd
}

func newComponentsSearchCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search components by id, name, description or prop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tk, checker := a.toolkit()
			defer checker.Close()

			hits := tk.Search(args[0])
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, hits)
			}
			if len(hits) == 0 {
				fmt.Fprintf(out, "No components match %q.\n", args[0])
				return nil
			}
			for _, h := range hits {
				fmt.Fprintf(out, "%s  (%s)\n", h.ID, h.MatchReason)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	return cmd
}

func newComponentsRenderCmd(a *app) *cobra.Command {
	var (
		propsJSON string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "render <component-id>",
		Short: "Render a component to HTML",
		Long: `Renders a component with --props overlaid on its defaults. The output
carries the data-component and data-props markers the detector reads back.`,
		Example: `  popupkit components render countdown-timer --props '{"title":"Last chance"}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var props registry.Props
			if propsJSON != "" {
				if err := json.Unmarshal([]byte(propsJSON), &props); err != nil {
					return fmt.Errorf("invalid --props: %w", err)
				}
			}

			tk, checker := a.toolkit()
			defer checker.Close()

			html, err := tk.Render(args[0], props)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), outPath, html)
		},
	}

	cmd.Flags().StringVar(&propsJSON, "props", "", "JSON object of prop overrides")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}
