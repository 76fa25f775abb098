package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/pcb"
	"github.com/spf13/cobra"
)

var infoNets bool

var infoCmd = &cobra.Command{
	Use:   "info <board_file> [net_name]",
	Short: "Show board information",
	Long: `Display the header, statement counts and extents of a board.

With --nets: Lists all nets with pad/track/via counts
With net_name: Shows detailed information for that specific net`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&infoNets, "nets", false, "list nets with pad/track/via counts")
}

func runInfo(cmd *cobra.Command, args []string) error {
	doc, err := pcb.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("error parsing board: %w", err)
	}
	out := cmd.OutOrStdout()

	if len(args) >= 2 {
		return showNetDetails(out, doc, args[1])
	}

	fmt.Fprintf(out, "Version: %d\n", doc.Version)
	if doc.Host.Name != "" {
		fmt.Fprintf(out, "Host:    %s %s\n", doc.Host.Name, doc.Host.Version)
	}
	if layers := doc.Layers(); layers != nil {
		fmt.Fprintf(out, "Layers:  %d\n", len(layers.Layers))
	}

	counts := doc.Counts()
	keywords := make([]string, 0, len(counts))
	for kw := range counts {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	fmt.Fprintln(out, "\nStatements:")
	for _, kw := range keywords {
		fmt.Fprintf(out, "  %-10s %6d\n", kw, counts[kw])
	}

	if bbox := doc.EdgeBounds("Edge.Cuts"); !bbox.IsEmpty() {
		fmt.Fprintf(out, "\nBoard outline: %.2f x %.2f mm\n", bbox.Width(), bbox.Height())
	}
	if bbox := doc.BoundingBox(); !bbox.IsEmpty() {
		fmt.Fprintf(out, "Extents: (%.2f, %.2f) - (%.2f, %.2f) mm\n",
			bbox.Min.X, bbox.Min.Y, bbox.Max.X, bbox.Max.Y)
	}

	if infoNets {
		fmt.Fprintln(out)
		listAllNets(out, doc)
	}
	return nil
}

func listAllNets(out io.Writer, doc *pcb.Document) {
	nets := doc.Nets()
	fmt.Fprintf(out, "Board: %d nets\n\n", len(nets))
	fmt.Fprintf(out, "%-30s %6s %6s %6s\n", "Net Name", "Pads", "Tracks", "Vias")
	fmt.Fprintln(out, "─────────────────────────────────────────────────────────")

	sorted := append([]*pcb.Net(nil), nets...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, n := range sorted {
		if n.Number == 0 {
			continue
		}
		segments, vias := doc.NetTracks(n.Number)
		fmt.Fprintf(out, "%-30s %6d %6d %6d\n",
			n.Name,
			len(doc.NetPads(n.Number)),
			len(segments),
			len(vias))
	}
}

func showNetDetails(out io.Writer, doc *pcb.Document, netName string) error {
	net, ok := doc.NetMap().GetByName(netName)
	if !ok {
		return fmt.Errorf("net '%s' not found", netName)
	}
	fmt.Fprintf(out, "Net: %s (number %d)\n\n", net.Name, net.Number)

	pads := doc.NetPads(net.Number)
	fmt.Fprintf(out, "Pads (%d):\n", len(pads))
	for _, pad := range pads {
		fmt.Fprintf(out, "  Pad %-4s: %s %s", pad.Number, pad.Kind, pad.Shape)
		if pad.Size != nil {
			fmt.Fprintf(out, " %.2f×%.2f mm", pad.Size.Width, pad.Size.Height)
		}
		fmt.Fprintln(out)
	}

	segments, vias := doc.NetTracks(net.Number)
	fmt.Fprintf(out, "\nTracks (%d):\n", len(segments))
	for i, s := range segments {
		if s.Start == nil || s.End == nil {
			continue
		}
		layer := ""
		if s.Layer != nil {
			layer = *s.Layer
		}
		fmt.Fprintf(out, "  Track %d: on %s from (%.2f, %.2f) to (%.2f, %.2f)\n",
			i+1, layer, s.Start.X, s.Start.Y, s.End.X, s.End.Y)
	}

	fmt.Fprintf(out, "\nVias (%d):\n", len(vias))
	for i, v := range vias {
		if v.At == nil {
			continue
		}
		fmt.Fprintf(out, "  Via %d: at (%.2f, %.2f)\n", i+1, v.At.X, v.At.Y)
	}
	return nil
}
