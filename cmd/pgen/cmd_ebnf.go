package main

import (
	"fmt"
	"io"
	"reflect"
	"slices"

	"github.com/dhamidi/pgen/ebnflex"
	"github.com/spf13/cobra"
)

func newEbnfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ebnf",
		Short:         "Lexical grammar tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newEbnfCheckCmd())

	return cmd
}

func newEbnfCheckCmd() *cobra.Command {
	var start string
	var trivia []string

	cmd := &cobra.Command{
		Use:           "check <file>",
		Short:         "Load and verify a lexical grammar",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := ebnflex.LoadGrammar(args[0])
			if err == nil {
				err = ebnflex.Verify(g, start, trivia...)
			}
			if err != nil {
				errs := flattenErrors(err)
				for _, e := range errs {
					fmt.Fprintln(cmd.ErrOrStderr(), e)
				}
				return fmt.Errorf("%s: %d errors", args[0], len(errs))
			}

			tokens := ebnflex.TokenProductions(g)
			writeTokenSummary(cmd.OutOrStdout(), len(g), tokens, trivia)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "production every other must be reachable from")
	cmd.Flags().StringSliceVar(&trivia, "skip", ebnflex.DefaultTrivia, "productions that become token prefix")

	return cmd
}

// writeTokenSummary prints the production counts, then each token
// production in the order the lexer tries them.
func writeTokenSummary(w io.Writer, productions int, tokens, trivia []string) {
	skipped := 0
	for _, name := range tokens {
		if slices.Contains(trivia, name) {
			skipped++
		}
	}
	fmt.Fprintf(w, "%d productions, %d tokens, %d trivia\n", productions, len(tokens)-skipped, skipped)
	for _, name := range tokens {
		if slices.Contains(trivia, name) {
			fmt.Fprintf(w, "  %s: trivia\n", name)
		} else {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
}

// flattenErrors splits joined errors and the error lists x/exp/ebnf
// returns into one error per line.
func flattenErrors(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var errs []error
		for _, e := range joined.Unwrap() {
			errs = append(errs, flattenErrors(e)...)
		}
		return errs
	}
	if v := reflect.ValueOf(err); v.Kind() == reflect.Slice {
		errs := make([]error, 0, v.Len())
		for i := range v.Len() {
			if e, ok := v.Index(i).Interface().(error); ok {
				errs = append(errs, e)
			}
		}
		return errs
	}
	if inner, ok := err.(interface{ Unwrap() error }); ok {
		if v := reflect.ValueOf(inner.Unwrap()); v.Kind() == reflect.Slice {
			return flattenErrors(inner.Unwrap())
		}
	}
	return []error{err}
}
