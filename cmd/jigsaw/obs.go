package main

import (
	"fmt"
	"math/big"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/jigsaw/internal/advisor"
)

var (
	obsFile   string
	obsTarget string
)

var obsCmd = &cobra.Command{
	Use:   "obs",
	Short: "Advise the minimum block size for a target permutation count",
	Long: `obs estimates how small the block size must be so that assembling the
fragments by brute force requires searching at least the target number of
orderings. The default target is 94^32, the key space of a 32-character
printable AES-256 key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := os.Stat(obsFile)
		if err != nil {
			return err
		}
		var target *big.Int
		if obsTarget != "" {
			target = new(big.Int)
			if _, ok := target.SetString(obsTarget, 10); !ok {
				return fmt.Errorf("--target-permutations %q: not a decimal integer", obsTarget)
			}
		}
		advice, err := advisor.Plan(info.Size(), target)
		if err != nil {
			return err
		}
		fmt.Printf("file=%s size=%s\n", obsFile, humanize.Bytes(uint64(info.Size())))
		fmt.Printf("fragments=%d min_blocksize=%d\n", advice.Fragments, advice.BlockSize)
		fmt.Printf("orderings=%s\n", humanize.BigComma(advice.Permutations))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(obsCmd)
	obsCmd.Flags().StringVarP(&obsFile, "file", "f", "", "Path to the file to estimate for")
	obsCmd.Flags().StringVar(&obsTarget, "target-permutations", "", "Target ordering count (default: 94^32)")
	_ = obsCmd.MarkFlagRequired("file")
}
