package cmd

import (
	"fmt"
	"os"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/outline"
	"github.com/spf13/cobra"
)

var outlineDepth int

var outlineCmd = &cobra.Command{
	Use:   "outline <file>",
	Short: "Print the statement tree of any KiCad S-expression file",
	Long: `Prints the keyword tree of a .kicad_pcb, .kicad_mod or other KiCad
S-expression file, merging repeated sibling statements into a count. Files
the board grammar does not accept can still be outlined.`,
	Args: cobra.ExactArgs(1),
	RunE: runOutline,
}

func init() {
	rootCmd.AddCommand(outlineCmd)
	outlineCmd.Flags().IntVarP(&outlineDepth, "depth", "d", 2, "levels to print (0 for all)")
}

func runOutline(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	nodes, err := outline.Outline(f, outlineDepth)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return outline.Fprint(cmd.OutOrStdout(), nodes)
}
