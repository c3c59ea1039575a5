package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/menta2k/fspy-importer/pkg/catalog"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List imported projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := catalog.Open(a.cfg.Catalog.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Projects(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(w, warningStyle.Render("No projects imported yet"))
				return nil
			}
			for _, r := range records {
				fmt.Fprintln(w, titleStyle.Render(r.FileName))
				fmt.Fprintln(w, field("Image", fmt.Sprintf("%dx%d", r.CameraParameters.ImageWidth, r.CameraParameters.ImageHeight)))
				fmt.Fprintln(w, field("Unit", r.ReferenceDistanceUnit))
				fmt.Fprintln(w, field("Imported", r.ImportedAt.Local().Format("2006-01-02 15:04")))
			}
			return nil
		},
	}
}

func newForgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <file.fspy>",
		Short: "Remove a project from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := catalog.Open(a.cfg.Catalog.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			// Projects are recorded under the base name of the imported file.
			name := filepath.Base(args[0])
			removed, err := store.ForgetProject(cmd.Context(), name)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("%s is not in the catalog", name)
			}
			a.logger.Debug("forgot project", "file", name)
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓")+" forgot "+name)
			return nil
		},
	}
}
