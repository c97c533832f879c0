package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/gnana997/popupkit/pkg/batch"
	"github.com/gnana997/popupkit/pkg/util"
	"github.com/gnana997/popupkit/pkg/watch"
)

// selectFlags are the include/exclude globs shared by batch and watch.
type selectFlags struct {
	include []string
	exclude []string
}

func (f *selectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "glob of records to merge (repeatable, default from config)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "glob to skip (repeatable, default from config)")
}

func (f *selectFlags) resolve(cmd *cobra.Command, cfg *ProjectConfig) (include, exclude []string) {
	include, exclude = cfg.Include, cfg.Exclude
	if cmd.Flags().Changed("include") {
		include = f.include
	}
	if cmd.Flags().Changed("exclude") {
		exclude = f.exclude
	}
	return include, exclude
}

func newFileCache(logger *slog.Logger) (*util.FileCache, error) {
	cfg := util.DefaultFileCacheConfig()
	cfg.Logger = logger
	return util.NewFileCache(cfg)
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		flags   mergeFlags
		sel     selectFlags
		workers int
		dryRun  bool
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "batch [dir]",
		Short: "Merge every template record under a directory",
		Long: `Discovers template records under dir (default ".") and merges them in
parallel. Each record's merged document is written next to it as
<name>` + batch.OutputSuffix + `. JSON files that are not records are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			opts := batch.DefaultRunOptions()
			opts.Include, opts.Exclude = sel.resolve(cmd, a.cfg)
			opts.Options = flags.apply(cmd.Flags(), a.cfg.Merge)
			opts.Workers = a.cfg.Workers
			if cmd.Flags().Changed("workers") {
				opts.Workers = workers
			}
			opts.WriteOutput = !dryRun

			cache, err := newFileCache(a.logger)
			if err != nil {
				return err
			}
			defer cache.Close()

			tk, checker := a.toolkit()
			defer checker.Close()

			var progress batch.ProgressCallback
			if !quiet {
				errOut := cmd.ErrOrStderr()
				progress = func(done, total int, path string) {
					fmt.Fprintf(errOut, "[%d/%d] %s\n", done, total, path)
				}
			}

			summary, err := batch.NewRunner(tk.Merger, cache, a.logger).Run(cmd.Context(), root, opts, progress)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary, dryRun)
			if summary.FilesFailed > 0 {
				return fmt.Errorf("%d record(s) failed to merge", summary.FilesFailed)
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	sel.register(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of merge workers (0 = one per CPU)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "merge without writing outputs")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress per-file progress")
	return cmd
}

func printSummary(w io.Writer, s *batch.Summary, dryRun bool) {
	for _, r := range s.Results {
		if dryRun {
			fmt.Fprintf(w, "  ok    %s\n", r.Path)
		} else {
			fmt.Fprintf(w, "  ok    %s -> %s\n", r.Path, r.OutputPath)
		}
	}
	for _, e := range s.Errors {
		fmt.Fprintf(w, "  fail  %s: %v\n", e.Path, e.Err)
	}
	fmt.Fprintf(w, "Merged %d of %d file(s) (%d skipped, %d failed) with %d worker(s) in %s\n",
		s.FilesMerged, s.FilesFound, s.FilesSkipped, s.FilesFailed, s.WorkerCount,
		s.Duration.Round(time.Millisecond))
}

func newWatchCmd(a *app) *cobra.Command {
	var (
		flags    mergeFlags
		sel      selectFlags
		debounce time.Duration
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-merge template records as they change",
		Long: `Watches dir (default ".") recursively and re-merges each template record
shortly after it is written. Runs until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			opts := watch.DefaultOptions()
			opts.Include, opts.Exclude = sel.resolve(cmd, a.cfg)
			opts.Merge = flags.apply(cmd.Flags(), a.cfg.Merge)
			opts.WriteOutput = !dryRun
			if cmd.Flags().Changed("debounce") {
				opts.Debounce = debounce
			} else {
				d, err := a.cfg.debounce()
				if err != nil {
					return err
				}
				opts.Debounce = d
			}

			cache, err := newFileCache(a.logger)
			if err != nil {
				return err
			}
			defer cache.Close()

			tk, checker := a.toolkit()
			defer checker.Close()

			w, err := watch.New(tk.Merger, cache, opts, a.logger)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			if err := w.Start(ctx, root); err != nil {
				return err
			}
			defer w.Stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", root)
			out := cmd.OutOrStdout()
			for {
				select {
				case <-ctx.Done():
					stats := w.Stats()
					fmt.Fprintf(out, "Stopped: %d merged, %d failed\n", stats.Merged, stats.Failed)
					return nil
				case ev := <-w.Events():
					printEvent(out, ev)
				}
			}
		},
	}

	flags.register(cmd.Flags())
	sel.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "delay before re-merging a changed file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "merge without writing outputs")
	return cmd
}

func printEvent(w io.Writer, ev watch.Event) {
	switch {
	case ev.Err != nil:
		fmt.Fprintf(w, "fail     %s: %v\n", ev.Path, ev.Err)
	case ev.Removed:
		fmt.Fprintf(w, "removed  %s\n", ev.Path)
	case ev.OutputPath != "":
		fmt.Fprintf(w, "merged   %s -> %s\n", ev.Path, ev.OutputPath)
	default:
		fmt.Fprintf(w, "merged   %s\n", ev.Path)
	}
}
