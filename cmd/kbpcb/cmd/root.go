package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kbpcb",
	Short: "KiCad 4 board tools for keyboard PCBs",
	Long: `kbpcb works with KiCad 4 .kicad_pcb and .kicad_mod files:
  - reformat boards into pcbnew's canonical layout
  - summarize boards and footprint libraries
  - generate a keyboard board from a key layout

Examples:
  kbpcb fmt -w board.kicad_pcb                     # Rewrite in place
  kbpcb info board.kicad_pcb                       # Counts and extents
  kbpcb outline --depth 2 board.kicad_pcb          # Statement tree
  kbpcb footprint list mx.pretty                   # Library contents
  kbpcb build --layout keys.json -o kb.kicad_pcb   # Generate a board`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
