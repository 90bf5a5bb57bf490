package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newTokensCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:           "tokens <file>",
		Short:         "Print the tokens the configured lexer produces for a file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := openLanguage(flags)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}
			toks, err := lang.Lexer(args[0], data).Tokenize()
			if err != nil {
				return err
			}
			for _, tok := range toks {
				fmt.Printf("%s\tprefix=%q\n", tok, tok.Prefix)
			}
			return nil
		},
	}
}
