package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pkgerrors "github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategyregistry"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <payload-file>",
		Short: "Check configurations against their strategy contracts without generating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payloads, err := readPayloads(args[0])
			if err != nil {
				return err
			}
			registry, err := strategyregistry.NewRegistry()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			invalid := 0
			for i, p := range payloads {
				if ge := checkContract(registry, p); ge != nil {
					invalid++
					fmt.Fprintf(out, "%d: %s\n", i, ge.Error())
					continue
				}
				fmt.Fprintf(out, "%d: ok\n", i)
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d configurations invalid", invalid, len(payloads))
			}
			return nil
		},
	}
}

// checkContract applies the registry's lookup rules and the strategy's
// declared contract. Dataset references are not resolved.
func checkContract(registry *strategy.Registry, cfg map[string]any) *pkgerrors.GenerationError {
	id, _ := cfg["strategy"].(string)
	if id == "" {
		return pkgerrors.NewGenerationError(pkgerrors.CodeMissingStrategy,
			"configuration does not name a strategy", nil)
	}
	cs, ok := registry.Describe(id)
	if !ok {
		return pkgerrors.NewGenerationError(pkgerrors.CodeUnknownStrategy,
			fmt.Sprintf("unknown strategy %q", id),
			map[string]any{"strategy": id, "available": registry.IDs()})
	}
	if ge := schema.Validate(cfg, cs); ge != nil {
		return ge.With("strategy", id)
	}
	return nil
}
