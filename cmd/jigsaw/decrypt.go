package main

import (
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/jigsaw/internal/catalog"
	"github.com/kk-code-lab/jigsaw/internal/engine"
	"github.com/kk-code-lab/jigsaw/internal/keyfile"
	"github.com/kk-code-lab/jigsaw/internal/vault"
)

var (
	decryptKeyfile string
	decryptOut     string
	decryptDir     string
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Reassemble a file from its fragments using the keyfile",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.Open(decryptKeyfile)
		if err != nil {
			return err
		}
		codec := &keyfile.BinaryCodec{}
		man, err := codec.Decode(raw)
		_ = raw.Close()
		if err != nil {
			return err
		}

		fragmentDir := decryptDir
		if fragmentDir == "" {
			fragmentDir = filepath.Dir(decryptKeyfile)
		}
		outPath := decryptOut
		if outPath == "" {
			if man.OriginalName == "" {
				return errors.New("keyfile records no original name; pass --out")
			}
			outPath = filepath.Join(fragmentDir, man.OriginalName)
		}
		layout := vault.NewLayout(fragmentDir)
		log.Printf("decrypting keyfile=%s fragments=%d dir=%s out=%s",
			decryptKeyfile, len(man.Entries), fragmentDir, outPath)

		// Assemble into a temp file so a failed verification leaves no
		// partial output behind.
		tmp, err := os.CreateTemp(filepath.Dir(outPath), ".jigsaw-*")
		if err != nil {
			return err
		}
		tmpPath := tmp.Name()
		if err := engine.Decode(cmd.Context(), man, layout.Lookup(), tmp); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
			return err
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(tmpPath)
			return err
		}
		if err := os.Rename(tmpPath, outPath); err != nil {
			_ = os.Remove(tmpPath)
			return err
		}

		log.Printf("decrypted fragments=%d bytes=%s out=%s",
			len(man.Entries), humanize.Bytes(man.OriginalSize), outPath)
		recordRun(cmd, catalog.Run{
			Op:           catalog.OpDecrypt,
			OriginalName: man.OriginalName,
			OriginalSize: int64(man.OriginalSize),
			Fragments:    len(man.Entries),
			Slicer:       string(man.Slicer),
			BlockSize:    int64(man.BlockSize),
			KeyfilePath:  decryptKeyfile,
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decryptCmd)
	decryptCmd.Flags().StringVarP(&decryptKeyfile, "keyfile", "k", "", "Path to the keyfile produced by encrypt")
	decryptCmd.Flags().StringVarP(&decryptOut, "out", "o", "", "Path for the reassembled file (default: original name next to the fragments)")
	decryptCmd.Flags().StringVarP(&decryptDir, "dir", "d", "", "Directory holding the fragment files (default: directory of --keyfile)")
	_ = decryptCmd.MarkFlagRequired("keyfile")
}
