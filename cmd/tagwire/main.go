// Copyright 2024 The TagWire Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command tagwire is the CLI entry point for the schema compiler:
// "generate" emits target-language code from a validated schema, and
// "format" canonically re-prints one. Shell-completion scaffolding and
// ANSI-colored diagnostic rendering are external collaborators per
// spec.md §1; this entry point renders diagnostics as plain text.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tagwire/tagwire/internal/cli"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "tagwire",
		Short:         "Schema-driven interface-definition compiler for the TagWire wire format",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newGenerateCommand())
	root.AddCommand(newFormatCommand())
	return root
}

func newGenerateCommand() *cobra.Command {
	var goOuts []string
	var goImportBase string
	var root string
	cmd := &cobra.Command{
		Use:   "generate <schema>",
		Short: "Validate a schema and emit code for the configured targets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			return cli.Generate(cli.GenerateRequest{
				SchemaPath:   args[0],
				SchemaRoot:   root,
				GoOuts:       goOuts,
				GoImportBase: goImportBase,
				Stdout:       cmd.OutOrStdout(),
				Stderr:       cmd.ErrOrStderr(),
				Logger:       logger,
			})
		},
	}
	cmd.Flags().StringArrayVar(&goOuts, "go-out", nil, "write generated Go source to this path (repeatable)")
	cmd.Flags().StringVar(&goImportBase, "go-import-base", "", "Go import path prefix every generated namespace package lives under (required when a schema references an imported namespace's types)")
	cmd.Flags().StringVar(&root, "root", "", "schema root directory; <schema> is read relative to it instead of its own parent directory (needed when <schema> imports a sibling of its parent)")
	return cmd
}

func newFormatCommand() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "format <schema>",
		Short: "Canonically re-print a schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			return cli.Format(cli.FormatRequest{
				SchemaPath: args[0],
				SchemaRoot: root,
				Stdout:     cmd.OutOrStdout(),
				Stderr:     cmd.ErrOrStderr(),
				Logger:     logger,
			})
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "schema root directory; <schema> is read relative to it instead of its own parent directory")
	return cmd
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
