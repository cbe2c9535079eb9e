// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lilacml/lilac-view/internal/dataset"
	"github.com/lilacml/lilac-view/internal/schema"
	"github.com/lilacml/lilac-view/internal/spans"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [dataset]",
	Short: "List the fields of a dataset with signal output merged in",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fetcher := newFetcher()
		if len(args) == 0 {
			names, err := fetcher.Datasets(cmd.Context(), cfg.Namespace)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}

		root, err := dataset.NewLoader(fetcher, logger).Schema(cmd.Context(), cfg.Namespace, args[0])
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PATH\tDTYPE\tSOURCE")
		for _, f := range schema.ChildFields(root) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", schema.Serialize(f.VisiblePath()), f.Dtype, source(f))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		for _, p := range spans.TextPaths(root) {
			fmt.Fprintf(cmd.OutOrStdout(), "text field: %s\n", schema.Serialize(p))
		}
		return nil
	},
}

// source names what produced a field.
func source(f *schema.Field) string {
	switch {
	case schema.IsSignalField(f):
		return "signal:" + schema.SignalName(f)
	case schema.IsLabelField(f):
		return "label:" + schema.Label(f)
	case schema.IsMapField(f):
		return "map"
	case schema.IsClusterField(f):
		return "cluster"
	}
	return "source"
}
