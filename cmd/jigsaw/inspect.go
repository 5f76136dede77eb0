package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/jigsaw/internal/keyfile"
)

var (
	inspectKeyfile string
	inspectJSON    bool
	inspectEntries bool
)

type keyfileView struct {
	Version      uint32          `json:"version"`
	Slicer       string          `json:"slicer"`
	BlockSize    uint32          `json:"blocksize"`
	NameLength   uint32          `json:"namelength"`
	HashLength   uint32          `json:"hashlength"`
	OriginalName string          `json:"original_name"`
	OriginalSize uint64          `json:"original_size"`
	SourceSum    string          `json:"source_sum"`
	Fragments    int             `json:"fragments"`
	Entries      []keyfile.Entry `json:"entries,omitempty"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the contents of a keyfile without touching fragments",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.Open(inspectKeyfile)
		if err != nil {
			return err
		}
		codec := &keyfile.BinaryCodec{}
		man, err := codec.Decode(raw)
		_ = raw.Close()
		if err != nil {
			return err
		}
		view := keyfileView{
			Version:      man.Version,
			Slicer:       string(man.Slicer),
			BlockSize:    man.BlockSize,
			NameLength:   man.NameLength,
			HashLength:   man.HashLength,
			OriginalName: man.OriginalName,
			OriginalSize: man.OriginalSize,
			SourceSum:    hex.EncodeToString(man.SourceSum[:]),
			Fragments:    len(man.Entries),
		}
		if inspectEntries {
			view.Entries = man.Entries
		}
		if inspectJSON {
			data, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		fmt.Printf("version=%d slicer=%s blocksize=%d namelength=%d hashlength=%d\n",
			view.Version, view.Slicer, view.BlockSize, view.NameLength, view.HashLength)
		fmt.Printf("original=%s size=%s fragments=%d\n",
			view.OriginalName, humanize.Bytes(view.OriginalSize), view.Fragments)
		fmt.Printf("source_sum=%s\n", view.SourceSum)
		if inspectEntries {
			for _, e := range man.Entries {
				fmt.Printf("  index=%d name=%s digest=%s size=%d\n", e.Index, e.Name, e.Digest, e.Size)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&inspectKeyfile, "keyfile", "k", "", "Path to the keyfile to inspect")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Emit JSON")
	inspectCmd.Flags().BoolVar(&inspectEntries, "entries", false, "Include per-fragment entries")
	_ = inspectCmd.MarkFlagRequired("keyfile")
}
