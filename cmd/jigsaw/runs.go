package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded encode and decode runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCatalog()
		if err != nil {
			return err
		}
		defer store.Close()
		runs, err := store.Runs(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no recorded runs")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s %-7s %s size=%s fragments=%d slicer=%s keyfile=%s\n",
				r.CreatedAt, r.Op, r.OriginalName,
				humanize.Bytes(uint64(r.OriginalSize)), r.Fragments, r.Slicer, r.KeyfilePath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list (0 = all)")
}
