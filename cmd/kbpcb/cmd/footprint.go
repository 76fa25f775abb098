package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/footprint"
	"github.com/spf13/cobra"
)

var footprintCmd = &cobra.Command{
	Use:   "footprint",
	Short: "Footprint library operations",
	Long:  `Commands for working with .pretty footprint libraries (.kicad_mod files)`,
}

var footprintListCmd = &cobra.Command{
	Use:   "list <library.pretty>",
	Short: "List the footprints of a library",
	Args:  cobra.ExactArgs(1),
	RunE:  runFootprintList,
}

var footprintShowCmd = &cobra.Command{
	Use:   "show <library.pretty> <name>",
	Short: "Print one footprint in canonical form",
	Args:  cobra.ExactArgs(2),
	RunE:  runFootprintShow,
}

func init() {
	rootCmd.AddCommand(footprintCmd)
	footprintCmd.AddCommand(footprintListCmd)
	footprintCmd.AddCommand(footprintShowCmd)
}

func runFootprintList(cmd *cobra.Command, args []string) error {
	lib, err := footprint.Open(args[0], logger)
	if err != nil {
		return err
	}
	names, err := lib.Names()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, name := range names {
		m, err := lib.Load(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-40s %3d pads\n", name, len(m.Pads()))
	}
	return nil
}

func runFootprintShow(cmd *cobra.Command, args []string) error {
	lib, err := footprint.Open(args[0], logger)
	if err != nil {
		return err
	}
	m, err := lib.Load(args[1])
	if err != nil {
		return err
	}
	s, err := m.Render(0)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
	return err
}
