// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cultivar/internal/modelstore"
	"github.com/tomtom215/cultivar/internal/predict"
)

func newModelsCmd(a *app) *cobra.Command {
	var (
		dir   string
		prune int
	)

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List persisted model versions",
		Long: `List the churn and CLV model versions saved by runs with --models (or
output.model_dir), with their quality metrics. --prune N keeps only the N
newest versions of each model.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.cfg.Output.ModelDir
			}
			if dir == "" {
				return fmt.Errorf("no model directory: pass --dir or set output.model_dir")
			}

			store, err := modelstore.NewStore(dir)
			if err != nil {
				return err
			}

			if prune > 0 {
				for _, name := range []string{predict.ModelChurn, predict.ModelCLV} {
					n, err := store.Prune(cmd.Context(), name, prune)
					if err != nil {
						return err
					}
					if n > 0 {
						cmd.Printf("Pruned %s %s versions\n", humanize.Comma(int64(n)), name)
					}
				}
			}

			list, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				cmd.Println("No models stored in", dir)
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tVERSION\tSAVED\tSIZE\tSAMPLES\tMETRICS")
			for _, m := range list {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
					m.Name, m.Version,
					humanize.Time(m.SavedAt),
					humanize.Bytes(uint64(m.SizeBytes)),
					humanize.Comma(int64(m.TrainingSamples)),
					formatMetrics(m.Metrics))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "model directory (default: output.model_dir)")
	cmd.Flags().IntVar(&prune, "prune", 0, "keep only the N newest versions of each model")
	return cmd
}

// formatMetrics renders metrics as sorted key=value pairs with thousands
// separators and at most three decimals.
func formatMetrics(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for i, k := range keys {
		if i > 0 {
			out += " "
		}
		out += k + "=" + humanize.CommafWithDigits(m[k], 3)
	}
	return out
}
