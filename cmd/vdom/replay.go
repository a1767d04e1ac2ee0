package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/internal/logstore"
	"github.com/vango-dev/reconcile/internal/scenario"
	"github.com/vango-dev/reconcile/pkg/memdom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

type replayOptions struct {
	pretty  bool
	diff    bool
	quiet   bool
	unmount bool
	out     string
	root    string
	storage logstore.S3Options
}

func replayCmd(flags *globalFlags) *cobra.Command {
	var opts replayOptions

	cmd := &cobra.Command{
		Use:   "replay [scenario.yaml]",
		Short: "Render a scenario step by step and print the mutations",
		Long: `Render every step of a scenario against the previous one and print the
render-target mutations each pass applied.

Without an argument the scenario named in vdom.yaml is replayed.

Examples:
  vdom replay scenarios/reorder.yaml
  vdom replay --diff
  vdom replay --quiet --out mutations.msgpack
  vdom replay --out s3://traces/reorder.msgpack`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("pretty") {
				opts.pretty = cfg.Replay.Pretty
			}
			if !cmd.Flags().Changed("diff") {
				opts.diff = cfg.Replay.Diff
			}
			opts.root = cfg.Root
			opts.storage = storageOptions(cfg)

			path := cfg.ScenarioPath()
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return errors.Newf(errors.CategoryCLI, "no scenario given").
					WithSuggestion("Pass a scenario file or set scenario in vdom.yaml")
			}
			sc, err := scenario.Load(path)
			if err != nil {
				return err
			}
			return runReplay(cmd.Context(), cmd.OutOrStdout(), sc, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.pretty, "pretty", "p", false, "Print indented snapshots")
	cmd.Flags().BoolVarP(&opts.diff, "diff", "d", false, "Print a snapshot diff instead of the full snapshot")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Print only per-step statistics")
	cmd.Flags().BoolVar(&opts.unmount, "unmount", true, "Unmount after the last step and check for leftovers")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the full mutation log to a msgpack file or s3://bucket/key")

	return cmd
}

// stepResult is what one pass reported.
type stepResult struct {
	stats    vdom.PassStats
	duration time.Duration
}

type passRecorder struct {
	last stepResult
}

func (r *passRecorder) PassCompleted(_ string, d time.Duration, stats vdom.PassStats, _ error) {
	r.last = stepResult{stats: stats, duration: d}
}

func runReplay(ctx context.Context, w io.Writer, sc *scenario.Scenario, opts replayOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.root == "" {
		opts.root = "body"
	}

	doc := memdom.New(opts.root)
	rec := &passRecorder{}
	e := vdom.New(doc, doc.Root(), vdom.WithObserver(rec))
	b := &scenario.Builder{}
	htmlOpts := memdom.HTMLOptions{Pretty: opts.pretty || opts.diff}

	fmt.Fprintf(w, "%s %s\n", bold("Scenario"), sc.Name)
	if sc.Description != "" {
		fmt.Fprintf(w, "  %s\n", gray(sc.Description))
	}

	var (
		log      []memdom.Mutation
		previous string
		total    int
	)
	for i, step := range sc.Steps {
		if err := e.Render(ctx, b.Step(step)); err != nil {
			return err
		}
		muts := doc.ResetLog()
		log = append(log, muts...)
		total += len(muts)

		fmt.Fprintf(w, "\n%s %s\n", cyan(fmt.Sprintf("▸ step %d/%d:", i+1, len(sc.Steps))), step.Name)
		if !opts.quiet {
			for _, m := range muts {
				fmt.Fprintf(w, "  %s\n", colorMutation(m))
			}
		}
		fmt.Fprintf(w, "  %s\n", gray(formatStats(rec.last)))

		snapshot := doc.RenderHTML(htmlOpts)
		switch {
		case opts.quiet:
		case opts.diff && i > 0:
			writeDiff(w, previous, snapshot)
		default:
			fmt.Fprintln(w)
			writeIndented(w, snapshot)
		}
		previous = snapshot
	}

	if opts.unmount {
		if err := e.Unmount(ctx); err != nil {
			return err
		}
		muts := doc.ResetLog()
		log = append(log, muts...)
		total += len(muts)

		fmt.Fprintf(w, "\n%s\n", cyan("▸ unmount"))
		fmt.Fprintf(w, "  %s\n", gray(formatStats(rec.last)))
		if n, l := doc.Count(), doc.ListenerCount(); n != 0 || l != 0 {
			fmt.Fprintf(w, "  %s %d nodes and %d listeners left after unmount\n", yellow("⚠"), n, l)
		}
	}

	if opts.out != "" {
		data, err := memdom.EncodeMutations(log)
		if err != nil {
			return err
		}
		if err := writeLog(ctx, opts.out, opts.storage, data); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\n%s Replayed %d steps, %d mutations\n", green("✓"), len(sc.Steps), total)
	return nil
}

func formatStats(r stepResult) string {
	s := r.stats
	parts := []string{fmt.Sprintf("%d mutations", s.Mutations())}
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	add(s.Created, "created")
	add(s.Removed, "removed")
	add(s.Moved, "moved")
	add(s.ComponentsCreated, "components created")
	add(s.ComponentsUpdated, "components updated")
	add(s.ComponentsDestroyed, "components destroyed")
	parts = append(parts, r.duration.Round(time.Microsecond).String())
	return strings.Join(parts, " · ")
}

// colorMutation colors a log line by the kind of change.
func colorMutation(m memdom.Mutation) string {
	line := m.String()
	switch m.Op {
	case "CreateElement", "CreateText", "AppendChild", "AddListener":
		return green(line)
	case "RemoveChild", "RemoveAttr", "RemoveListener":
		return red(line)
	case "InsertBefore":
		return cyan(line)
	default:
		return yellow(line)
	}
}

// writeDiff prints a line diff between two snapshots.
func writeDiff(w io.Writer, from, to string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	fmt.Fprintln(w)
	changed := false
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				fmt.Fprintf(w, "  %s\n", green("+ "+line))
				changed = true
			case diffmatchpatch.DiffDelete:
				fmt.Fprintf(w, "  %s\n", red("- "+line))
				changed = true
			default:
				fmt.Fprintf(w, "  %s\n", gray("  "+line))
			}
		}
	}
	if !changed {
		fmt.Fprintf(w, "  %s\n", gray("(no change)"))
	}
}

func writeIndented(w io.Writer, text string) {
	for _, line := range splitLines(text) {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
