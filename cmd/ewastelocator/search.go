package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ewastelocator/internal/config"
	"ewastelocator/internal/mapview"
	"ewastelocator/internal/render"
	"ewastelocator/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the center catalog by city, name or PIN",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}

		cat, err := openCatalog(cmd.Context(), config.ResolveDataDir(cfg))
		if err != nil {
			return err
		}

		list := search.Filter(cat.Centers(), query)
		panel := render.New().Render(list, mapview.NewScene())

		out := cmd.OutOrStdout()
		if panel.Empty() {
			fmt.Fprintln(out, panel.Message)
			return nil
		}
		for i, item := range panel.Items {
			fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, item.Name, item.Summary)
		}
		fmt.Fprintln(out, strings.Repeat("-", 40))
		fmt.Fprintf(out, "%d of %d centers\n", len(panel.Items), cat.Len())
		return nil
	},
}
