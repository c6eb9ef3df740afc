package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/searchforge/booksearch/internal/contract"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Run a single search and print the report",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ctrl, _, closer, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		params := contract.Params{Query: strings.Join(args, " ")}
		report := ctrl.Search(context.Background(), params, cfg.Settings)
		fmt.Fprintln(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
