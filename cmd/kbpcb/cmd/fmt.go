package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/pcb"
	"github.com/spf13/cobra"
)

var fmtWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <board_file>",
	Short: "Reformat a board file",
	Long: `Parses a board and writes it back in canonical form. The result goes to
standard output unless -w is given, in which case the file is rewritten
only if its contents change.`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write result to the source file")
}

func runFmt(cmd *cobra.Command, args []string) error {
	filename := args[0]
	src, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	doc, err := pcb.ParseString(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	out, err := doc.Render()
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}

	if !fmtWrite {
		_, err := fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}
	if out == string(src) {
		logger.Debug("already formatted", slog.String("file", filename))
		return nil
	}
	info, err := os.Stat(filename)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, []byte(out), info.Mode().Perm()); err != nil {
		return err
	}
	logger.Info("formatted", slog.String("file", filename))
	return nil
}
