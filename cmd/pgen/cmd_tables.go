package main

import (
	"fmt"

	"github.com/dhamidi/pgen/grammar"
	"github.com/spf13/cobra"
)

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tables",
		Short:         "Parser table tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newTablesCheckCmd())

	return cmd
}

func newTablesCheckCmd() *cobra.Command {
	var startRule string

	cmd := &cobra.Command{
		Use:           "check <file>",
		Short:         "Load and validate parser tables",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := grammar.Load(args[0])
			if err != nil {
				return err
			}
			if startRule != "" {
				if _, err := g.Start(startRule); err != nil {
					return err
				}
			}

			states := 0
			for _, rule := range g.Rules() {
				states += len(g.States(rule))
			}
			fmt.Printf("%d rules, %d states, %d reserved strings\n", len(g.Rules()), states, len(g.ReservedStrings()))
			for _, s := range g.SoftConflicts() {
				fmt.Printf("  %s: soft keyword needs lookahead\n", s)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startRule, "start", "", "rule that must exist")

	return cmd
}
