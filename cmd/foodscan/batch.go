package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/DipamJha/foodPro/internal/batch"
	"github.com/DipamJha/foodPro/internal/domain/product"
)

func newBatchCmd(flags *rootFlags) *cobra.Command {
	var (
		file        string
		concurrency int
	)
	c := &cobra.Command{
		Use:   "batch",
		Short: "Look up every barcode of a file and print one JSON line per barcode",
		Long: `Reads one barcode per line from --file ("-" for stdin, .gz files are
decompressed), skips blank lines and repeats, and writes one JSON object per
distinct barcode to stdout. A summary by outcome goes to stderr.`,
		Example: `  foodscan batch --file barcodes.txt
  foodscan batch --file barcodes.txt.gz --concurrency 8 > results.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := flags.client()
			if err != nil {
				return err
			}

			var in io.ReadCloser = io.NopCloser(cmd.InOrStdin())
			if file != "-" {
				if in, err = batch.Open(file); err != nil {
					return err
				}
			}
			defer func() { _ = in.Close() }()

			summary, err := batch.Run(cmd.Context(), client, in, cmd.OutOrStdout(), batch.Options{
				Concurrency: concurrency,
			})
			if err != nil {
				return err
			}
			return writeSummary(cmd.ErrOrStderr(), summary)
		},
	}
	c.Flags().StringVarP(&file, "file", "f", "", `Barcode file, one per line ("-" for stdin)`)
	c.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "Concurrent lookups")
	_ = c.MarkFlagRequired("file")
	return c
}

func writeSummary(w io.Writer, s *batch.Summary) error {
	if _, err := fmt.Fprintf(w, "Looked up %d barcodes (%d duplicates skipped)\n", s.Total, s.Duplicates); err != nil {
		return errors.Wrap(err, "write summary")
	}
	outcomes := make([]product.Outcome, 0, len(s.Outcomes))
	for o := range s.Outcomes {
		outcomes = append(outcomes, o)
	}
	slices.Sort(outcomes)
	for _, o := range outcomes {
		if _, err := fmt.Fprintf(w, "  %-12s %d\n", o, s.Outcomes[o]); err != nil {
			return errors.Wrap(err, "write summary")
		}
	}
	return nil
}
