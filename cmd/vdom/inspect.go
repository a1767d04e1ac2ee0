package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/internal/config"
	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/internal/logstore"
	"github.com/vango-dev/reconcile/pkg/memdom"
)

func inspectCmd(flags *globalFlags) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "inspect <log>",
		Short: "Print a mutation log written by replay --out",
		Long: `Decode a msgpack mutation log and print it.

The log may be a local file or an s3://bucket/key location. S3
credentials are read from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.

Examples:
  vdom inspect mutations.msgpack
  vdom inspect --summary s3://traces/reorder.msgpack`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			data, err := readLog(cmd.Context(), args[0], storageOptions(cfg))
			if err != nil {
				return err
			}
			return runInspect(cmd.OutOrStdout(), data, summary)
		},
	}

	cmd.Flags().BoolVarP(&summary, "summary", "s", false, "Print per-operation counts only")
	return cmd
}

func runInspect(w io.Writer, data []byte, summary bool) error {
	muts, err := memdom.DecodeMutations(data)
	if err != nil {
		return errors.New("E401").Wrap(err)
	}

	counts := make(map[string]int)
	for _, m := range muts {
		counts[m.Op]++
		if !summary {
			fmt.Fprintf(w, "%s %s\n", gray(fmt.Sprintf("%6d", m.Seq)), colorMutation(m))
		}
	}

	ops := make([]string, 0, len(counts))
	for op := range counts {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	fmt.Fprintln(w)
	for _, op := range ops {
		fmt.Fprintf(w, "  %-14s %d\n", op, counts[op])
	}
	fmt.Fprintf(w, "\n%s %d mutations\n", green("✓"), len(muts))
	return nil
}

func storageOptions(cfg *config.Config) logstore.S3Options {
	return logstore.S3Options{
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		PathStyle: cfg.Storage.PathStyle,
	}
}

func writeLog(ctx context.Context, location string, opts logstore.S3Options, data []byte) error {
	store, name, err := logstore.Open(location, opts)
	if err != nil {
		return errors.New("E401").Wrap(err)
	}
	if err := store.Put(ctx, name, data); err != nil {
		return errors.New("E401").WithDetail("Writing " + location).Wrap(err)
	}
	return nil
}

func readLog(ctx context.Context, location string, opts logstore.S3Options) ([]byte, error) {
	store, name, err := logstore.Open(location, opts)
	if err != nil {
		return nil, errors.New("E401").Wrap(err)
	}
	data, err := store.Get(ctx, name)
	if err != nil {
		return nil, errors.New("E401").WithDetail("Reading " + location).Wrap(err)
	}
	return data, nil
}
