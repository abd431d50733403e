package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategyregistry"
)

func newStrategiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "List registered strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry, err := strategyregistry.NewRegistry()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tVERSION\tDESCRIPTION")
			for _, info := range registry.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.ID, info.Kind, info.Version, info.Description)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "describe <strategy-id>",
		Short: "Print the configuration contract of a strategy as JSON Schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := strategyregistry.NewRegistry()
			if err != nil {
				return err
			}
			cs, ok := registry.Describe(args[0])
			if !ok {
				return errors.WrapInvalid(fmt.Errorf("%w: unknown strategy %q", errors.ErrInvalidConfig, args[0]),
					"rngen", "describe", "strategy lookup")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(schema.JSONSchema(args[0], cs))
		},
	})

	return cmd
}
