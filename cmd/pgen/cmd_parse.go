package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dhamidi/pgen/parser"
	"github.com/dhamidi/pgen/tree"
	"github.com/spf13/cobra"
)

func newParseCmd(flags *globalFlags) *cobra.Command {
	var outputFormat string
	var rule string
	var includePositions bool

	cmd := &cobra.Command{
		Use:           "parse <file>",
		Short:         "Parse a file and dump its syntax tree",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			lang, err := openLanguage(flags)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			if rule == "" {
				rule = lang.Config.Start
			}
			root, err := lang.ParseRule(rule, filename, data)
			if err != nil {
				return describeParseError(err)
			}

			switch outputFormat {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(root); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
			case "text":
				fmt.Print(tree.Dump(root, includePositions))
			case "code":
				fmt.Print(root.Code())
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json, code)")
	cmd.Flags().StringVarP(&rule, "rule", "r", "", "start rule (default from config)")
	cmd.Flags().BoolVar(&includePositions, "positions", false, "include positions in text output")

	return cmd
}

func describeParseError(err error) error {
	var syntaxErr *parser.SyntaxError
	var internalErr *parser.InternalError
	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Errorf("syntax error: %w", err)
	case errors.As(err, &internalErr):
		return fmt.Errorf("internal parser error: %w", err)
	}
	return err
}
