package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Thongheng/HashGen/pkg/interfaces/logger"
)

func newSnippetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snippets",
		Short: "Manage stored signing snippets",
	}
	cmd.AddCommand(newSnippetsListCmd())
	cmd.AddCommand(newSnippetsShowCmd())
	cmd.AddCommand(newSnippetsSaveCmd())
	cmd.AddCommand(newSnippetsDeleteCmd())
	return cmd
}

func newSnippetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snippet names in file order",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd.Context(), logger.Default())
			if err != nil {
				return err
			}
			defer cleanup()

			names, err := svc.ListNames(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newSnippetsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print a snippet's description and code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd.Context(), logger.Default())
			if err != nil {
				return err
			}
			defer cleanup()

			snippet, ok, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("snippet %q not found", args[0])
			}
			if snippet.Description != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", snippet.Description)
			}
			fmt.Fprintln(cmd.OutOrStdout(), snippet.Code)
			return nil
		},
	}
}

func newSnippetsSaveCmd() *cobra.Command {
	var (
		codeFile    string
		description string
	)
	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Create or replace a snippet from a code file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(codeFile)
			if err != nil {
				return fmt.Errorf("read code file: %w", err)
			}

			svc, cleanup, err := openService(cmd.Context(), logger.Default())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Upsert(cmd.Context(), args[0], string(code), description); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %q\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&codeFile, "file", "f", "", "file containing the snippet code")
	cmd.Flags().StringVarP(&description, "description", "d", "", "free-text description")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSnippetsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a snippet (no-op when absent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd.Context(), logger.Default())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %q\n", args[0])
			return nil
		},
	}
}
