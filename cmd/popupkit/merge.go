package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gnana997/popupkit/pkg/batch"
	"github.com/gnana997/popupkit/pkg/merger"
	"github.com/gnana997/popupkit/pkg/reminder"
	"github.com/gnana997/popupkit/pkg/toolkit"
)

// mergeFlags are the merge options that can override the project config.
type mergeFlags struct {
	popupSelector     string
	triggerSelector   string
	closeSelectors    []string
	noAnimations      bool
	animationDuration string
	autoOpen          bool
	disableClose      bool
	hideReminderTab   bool
	validate          bool
}

func (f *mergeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.popupSelector, "popup-selector", "", "CSS selector of the popup container")
	fs.StringVar(&f.triggerSelector, "trigger-selector", "", "CSS selector of the elements that open the popup")
	fs.StringSliceVar(&f.closeSelectors, "close-selector", nil, "CSS selector of a close control (repeatable)")
	fs.BoolVar(&f.noAnimations, "no-animations", false, "disable popup transitions")
	fs.StringVar(&f.animationDuration, "animation-duration", "", `transition duration, e.g. "0.3s" or "300ms"`)
	fs.BoolVar(&f.autoOpen, "auto-open", false, "open the popup on page load")
	fs.BoolVar(&f.disableClose, "disable-close-buttons", false, "leave close controls unwired")
	fs.BoolVar(&f.hideReminderTab, "hide-reminder-tab", false, "omit the reminder tab triggers")
	fs.BoolVar(&f.validate, "validate", false, "parse emitted scripts and log syntax errors")
}

// apply overlays the flags the user set on base.
func (f *mergeFlags) apply(fs *pflag.FlagSet, base merger.Options) merger.Options {
	opts := base
	if fs.Changed("popup-selector") {
		opts.PopupSelector = f.popupSelector
	}
	if fs.Changed("trigger-selector") {
		opts.TriggerSelector = f.triggerSelector
	}
	if fs.Changed("close-selector") {
		opts.CloseSelectors = f.closeSelectors
	}
	if fs.Changed("no-animations") {
		enabled := !f.noAnimations
		opts.EnableAnimations = &enabled
	}
	if fs.Changed("animation-duration") {
		opts.AnimationDuration = f.animationDuration
	}
	if fs.Changed("auto-open") {
		opts.AutoOpenPopup = f.autoOpen
	}
	if fs.Changed("disable-close-buttons") {
		opts.DisableCloseButtons = f.disableClose
	}
	if fs.Changed("hide-reminder-tab") {
		opts.HideReminderTab = f.hideReminderTab
	}
	if fs.Changed("validate") {
		opts.ValidateScripts = f.validate
	}
	return opts.WithDefaults()
}

func newMergeCmd(a *app) *cobra.Command {
	var (
		flags        mergeFlags
		templatePath string
		configPath   string
		outPath      string
	)

	cmd := &cobra.Command{
		Use:   "merge [record.json]",
		Short: "Merge the reminder tab into a popup template",
		Long: `Merges the reminder tab widget into a popup template and writes the
combined document to stdout or --out.

Either pass a stored template record (a JSON file with template_html and
reminder_tab_state_json), or pass --template with an optional --reminder
configuration. Without --reminder the default reminder configuration is used.`,
		Example: `  popupkit merge popups/summer.json -o summer.html
  popupkit merge --template popup.html --reminder reminder.json --auto-open`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && templatePath != "" {
				return fmt.Errorf("pass either a record or --template, not both")
			}
			if len(args) == 0 && templatePath == "" {
				return fmt.Errorf("a record file or --template is required")
			}

			opts := flags.apply(cmd.Flags(), a.cfg.Merge)
			tk, checker := a.toolkit()
			defer checker.Close()

			var (
				html string
				err  error
			)
			if len(args) == 1 {
				html, err = mergeRecord(tk, args[0], opts)
			} else {
				html, err = mergeTemplate(tk, templatePath, configPath, opts)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), outPath, html)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "popup template HTML file")
	cmd.Flags().StringVarP(&configPath, "reminder", "r", "", "reminder configuration JSON file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func mergeRecord(tk *toolkit.Toolkit, path string, opts merger.Options) (string, error) {
	rec, err := batch.LoadRecord(nil, path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	html, err := tk.Merge(rec, opts)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return html, nil
}

func mergeTemplate(tk *toolkit.Toolkit, templatePath, configPath string, opts merger.Options) (string, error) {
	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	cfg, err := readReminderConfig(configPath)
	if err != nil {
		return "", err
	}
	return tk.Merger.MergeConfig(cfg, string(tmpl), opts), nil
}

// readReminderConfig loads a reminder configuration. An empty path yields
// the defaults.
func readReminderConfig(path string) (reminder.Config, error) {
	var data []byte
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return reminder.Config{}, fmt.Errorf("reading reminder config: %w", err)
		}
	}
	cfg, err := toolkit.ParseReminderConfig(data)
	if err != nil {
		return reminder.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// writeOutput writes s to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path, s string) error {
	if path == "" || path == "-" {
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
		if !strings.HasSuffix(s, "\n") {
			_, err := io.WriteString(w, "\n")
			return err
		}
		return nil
	}
	return os.WriteFile(path, []byte(s), 0644)
}
