package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/builder"
	"github.com/spf13/cobra"
)

var (
	buildConfig string
	buildLayout string
	buildOutput string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate a keyboard board from a key layout",
	Long: `Places one switch footprint per key of a JSON layout and outlines the
board with a closed Edge.Cuts polygon.

Layout file:
  {"keys": [{"x": 0, "y": 0, "w": 19, "h": 19, "r": 0}, ...],
   "outline": [[-9.5, -9.5], [9.5, -9.5], [9.5, 9.5], [-9.5, 9.5]]}`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildConfig, "config", "c", "", "JSON builder config (default: built-in MX config)")
	buildCmd.Flags().StringVarP(&buildLayout, "layout", "l", "", "JSON key layout")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output board file")
	_ = buildCmd.MarkFlagRequired("layout")
	_ = buildCmd.MarkFlagRequired("output")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := builder.DefaultConfig()
	if buildConfig != "" {
		var err error
		if cfg, err = builder.LoadConfig(buildConfig); err != nil {
			return err
		}
	}
	layout, err := builder.LoadLayout(buildLayout)
	if err != nil {
		return err
	}

	b, err := builder.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	if err := b.Apply(layout); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return b.WriteFile(buildOutput)
}
