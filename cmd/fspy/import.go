package main

import (
	"fmt"

	"github.com/spf13/cobra"

	fspy "github.com/menta2k/fspy-importer"
	"github.com/menta2k/fspy-importer/internal/utils"
	"github.com/menta2k/fspy-importer/pkg/catalog"
)

func newImportCmd(a *app) *cobra.Command {
	var outDir string
	var noWallpaper bool

	cmd := &cobra.Command{
		Use:   "import <file.fspy|dir>...",
		Short: "Import projects into the catalog and export their wallpapers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandProjectPaths(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no project files found")
			}

			store, err := catalog.Open(a.cfg.Catalog.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			cfg := a.importerConfig()
			if outDir != "" {
				cfg.OutputDir = outDir
			}
			if noWallpaper {
				cfg.OutputDir = ""
			}
			importer := fspy.NewImporter(cfg, fspy.WithLogger(a.logger), fspy.WithCatalog(store))

			w := cmd.OutOrStdout()
			failed := 0
			for _, file := range files {
				result, err := importer.Import(cmd.Context(), file)
				if err != nil {
					a.logger.Error("failed to import project", "file", file, "err", err)
					fmt.Fprintln(w, errorStyle.Render("✗")+" "+file)
					failed++
					continue
				}
				line := successStyle.Render("✓") + " " + result.Project.FileName
				if result.WallpaperPath != "" {
					line += " → " + result.WallpaperPath
				}
				fmt.Fprintln(w, line)
				for _, warning := range result.Warnings {
					fmt.Fprintln(w, "  "+warningStyle.Render("warning: ")+warning)
				}
			}

			if failed > 0 {
				return &exitError{Code: 1, Err: fmt.Errorf("%d of %d projects failed to import", failed, len(files))}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "wallpaper output directory (default from config)")
	cmd.Flags().BoolVar(&noWallpaper, "no-wallpaper", false, "skip the wallpaper export")
	return cmd
}

// expandProjectPaths replaces directories with the project files inside them
func expandProjectPaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		if !utils.DirExists(path) {
			files = append(files, path)
			continue
		}
		found, err := utils.ListProjectFiles(path)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", path, err)
		}
		files = append(files, found...)
	}
	return files, nil
}
