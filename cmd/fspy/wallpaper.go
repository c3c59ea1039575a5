package main

import (
	"fmt"

	"github.com/spf13/cobra"

	fspy "github.com/menta2k/fspy-importer"
	"github.com/menta2k/fspy-importer/pkg/processing"
)

func newWallpaperCmd(a *app) *cobra.Command {
	var outDir, format string
	var raw bool

	cmd := &cobra.Command{
		Use:   "wallpaper <file.fspy>",
		Short: "Export the reference photo of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.importerConfig()
			if outDir != "" {
				cfg.OutputDir = outDir
			}
			if format != "" {
				if !processing.IsSupportedFormat(format) {
					return fmt.Errorf("unsupported output format: %s", format)
				}
				cfg.Format = format
			}
			if cmd.Flags().Changed("raw") {
				cfg.Raw = raw
			}

			p, err := fspy.Open(args[0])
			if err != nil {
				return err
			}
			out, err := fspy.NewImporter(cfg, fspy.WithLogger(a.logger)).ExportWallpaper(args[0], p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓")+" "+out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	cmd.Flags().StringVar(&format, "format", "", "output format: jpg|png|webp (default from config)")
	cmd.Flags().BoolVar(&raw, "raw", false, "write the photo bytes as stored")
	return cmd
}
