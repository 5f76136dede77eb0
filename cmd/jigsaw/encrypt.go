package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/jigsaw/internal/catalog"
	"github.com/kk-code-lab/jigsaw/internal/engine"
	"github.com/kk-code-lab/jigsaw/internal/keyfile"
	"github.com/kk-code-lab/jigsaw/internal/slicer"
	"github.com/kk-code-lab/jigsaw/internal/vault"
)

var (
	encryptFile       string
	encryptOut        string
	encryptSlicer     string
	encryptBlockSize  int
	encryptNameLength int
	encryptHashLength int
	encryptSeed       int64
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Slice a file into fragment files plus a keyfile",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := slicer.ParseKind(encryptSlicer)
		if err != nil {
			return fmt.Errorf("--slicer %q: %w", encryptSlicer, err)
		}
		src, err := os.Open(encryptFile)
		if err != nil {
			return err
		}
		defer src.Close()

		outDir := encryptOut
		if outDir == "" {
			outDir = filepath.Dir(encryptFile)
		}
		layout := vault.NewLayout(outDir)
		if err := layout.EnsureRoot(); err != nil {
			return err
		}

		var rng *rand.Rand
		if encryptSeed != 0 {
			rng = rand.New(rand.NewSource(encryptSeed))
		}
		originalName := filepath.Base(encryptFile)
		log.Printf("encrypting file=%s slicer=%s blocksize=%d out=%s", encryptFile, kind, encryptBlockSize, outDir)

		man, files, err := engine.Encode(cmd.Context(), src, engine.Options{
			Slicer:       kind,
			BlockSize:    encryptBlockSize,
			NameLength:   encryptNameLength,
			HashLength:   encryptHashLength,
			OriginalName: originalName,
			Rand:         rng,
		})
		if err != nil {
			return err
		}

		for _, f := range files {
			if err := layout.WriteFragment(f.Name, f.Data); err != nil {
				return err
			}
		}
		keyfilePath := layout.KeyfilePath(originalName)
		kf, err := os.Create(keyfilePath)
		if err != nil {
			return err
		}
		codec := &keyfile.BinaryCodec{}
		if err := codec.Encode(kf, man); err != nil {
			_ = kf.Close()
			return err
		}
		if err := kf.Close(); err != nil {
			return err
		}

		log.Printf("encrypted fragments=%d bytes=%s keyfile=%s",
			len(files), humanize.Bytes(man.OriginalSize), keyfilePath)
		recordRun(cmd, catalog.Run{
			Op:           catalog.OpEncrypt,
			OriginalName: originalName,
			OriginalSize: int64(man.OriginalSize),
			Fragments:    len(man.Entries),
			Slicer:       string(man.Slicer),
			BlockSize:    int64(man.BlockSize),
			KeyfilePath:  keyfilePath,
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encryptCmd)
	encryptCmd.Flags().StringVarP(&encryptFile, "file", "f", "", "Path to the file to encrypt")
	encryptCmd.Flags().StringVarP(&encryptOut, "out", "o", "", "Directory for fragment files and keyfile (default: directory of --file)")
	encryptCmd.Flags().StringVar(&encryptSlicer, "slicer", "even", "Slicing method: even or uneven")
	encryptCmd.Flags().IntVar(&encryptBlockSize, "blocksize", slicer.DefaultBlockSize, "Fragment size in bytes (uneven: fragments span 1..2*blocksize)")
	encryptCmd.Flags().IntVar(&encryptNameLength, "namelength", engine.DefaultNameLength, "Length of generated fragment file names")
	encryptCmd.Flags().IntVar(&encryptHashLength, "hashlength", engine.DefaultHashLength, "Length of the per-fragment fidelity digest")
	encryptCmd.Flags().Int64Var(&encryptSeed, "seed", 0, "Random seed for slicing and shuffle (0 = time-based)")
	_ = encryptCmd.MarkFlagRequired("file")
}
