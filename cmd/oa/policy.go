package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsaudit/opsaudit/internal/policy"
	costpack "github.com/opsaudit/opsaudit/internal/rulepacks/cost"
	identitypack "github.com/opsaudit/opsaudit/internal/rulepacks/identity"
	storagepack "github.com/opsaudit/opsaudit/internal/rulepacks/storage"
	trafficpack "github.com/opsaudit/opsaudit/internal/rulepacks/traffic"
	"github.com/opsaudit/opsaudit/internal/rules"
)

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Work with policy files",
	}
	cmd.AddCommand(newPolicyValidateCmd())
	return cmd
}

func newPolicyValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "validate <file>",
		Short:         "Validate a policy YAML file against the known rule set",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := policy.LoadPolicy(args[0])
			if err != nil {
				return fmt.Errorf("load policy: %w", err)
			}
			errs := policy.Validate(cfg, allRuleIDs())
			if len(errs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: policy is valid\n", args[0])
				return nil
			}
			for _, e := range errs {
				fmt.Fprintf(cmd.OutOrStdout(), "  %v\n", e)
			}
			return fmt.Errorf("%s: %d validation error(s)", args[0], len(errs))
		},
	}
	return cmd
}

// allRuleIDs returns the union of all known rule IDs from every rule pack.
func allRuleIDs() []string {
	var ids []string
	for _, pack := range [][]rules.Rule{
		identitypack.New(),
		storagepack.New(),
		trafficpack.New(),
		costpack.New(),
	} {
		for _, r := range pack {
			ids = append(ids, r.ID())
		}
	}
	return ids
}
