package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/jigsaw/internal/catalog"
)

const version = "0.1.0"

var dataDir string

var rootCmd = &cobra.Command{
	Use:     "jigsaw",
	Short:   "Split a file into shuffled fragments and reassemble it with a keyfile",
	Version: version,
	Long: `jigsaw slices a file into opaquely-named fragment files plus one keyfile
recording how to reassemble them. Fragments carry truncated fidelity
digests so corruption or substitution is detected on reassembly. The
keyfile is a structural manifest, not a cipher key: anyone holding all
fragments and the keyfile can reconstruct the original.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "Directory for the run catalog database")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jigsaw"
	}
	return filepath.Join(home, ".jigsaw")
}

// openCatalog opens the run catalog, creating the data directory if
// needed. Catalog failures are reported by the caller as warnings; the
// catalog is history, never a dependency of encode or decode.
func openCatalog() (*catalog.Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return catalog.Open(filepath.Join(dataDir, "catalog.db"))
}

// recordRun appends a run to the catalog, logging instead of failing.
func recordRun(cmd *cobra.Command, run catalog.Run) {
	store, err := openCatalog()
	if err != nil {
		log.Printf("catalog unavailable: %v", err)
		return
	}
	defer store.Close()
	if _, err := store.RecordRun(cmd.Context(), run); err != nil {
		log.Printf("catalog record failed: %v", err)
	}
}
