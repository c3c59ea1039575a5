package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	fspy "github.com/menta2k/fspy-importer"
	"github.com/menta2k/fspy-importer/internal/utils"
	"github.com/menta2k/fspy-importer/pkg/geometry"
	"github.com/menta2k/fspy-importer/pkg/processing"
	"github.com/menta2k/fspy-importer/pkg/types"
)

func newInspectCmd(a *app) *cobra.Command {
	var sensorWidth, sensorHeight float64

	cmd := &cobra.Command{
		Use:   "inspect <file.fspy>...",
		Short: "Print the camera stored in project files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sensor := a.cfg.Sensor
			if cmd.Flags().Changed("sensor-width") {
				sensor.Width = sensorWidth
			}
			if cmd.Flags().Changed("sensor-height") {
				sensor.Height = sensorHeight
			}

			failed := 0
			for _, path := range args {
				if err := a.inspect(cmd.OutOrStdout(), path, sensor); err != nil {
					a.logger.Error("failed to inspect project", "file", path, "err", err)
					failed++
				}
			}
			if failed > 0 {
				return &exitError{Code: 1, Err: fmt.Errorf("%d of %d projects could not be read", failed, len(args))}
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&sensorWidth, "sensor-width", 0, "sensor width in mm (default from config)")
	cmd.Flags().Float64Var(&sensorHeight, "sensor-height", 0, "sensor height in mm (default from config)")
	return cmd
}

func (a *app) inspect(w io.Writer, path string, sensor types.SensorSize) error {
	p, err := fspy.Open(path)
	if err != nil {
		return err
	}
	params := p.CameraParameters

	fmt.Fprintln(w, titleStyle.Render(p.FileName))
	fmt.Fprintln(w, field("Version", p.Version))
	fmt.Fprintln(w, field("Unit", p.ReferenceDistanceUnit))
	fmt.Fprintln(w, field("Image", fmt.Sprintf("%dx%d (%s)", params.ImageWidth, params.ImageHeight, utils.FormatFileSize(int64(len(p.ImageBytes))))))
	fmt.Fprintln(w, field("Photo", a.describePhoto(p.ImageBytes)))
	fmt.Fprintln(w, field("Principal point", fmt.Sprintf("(%g, %g)", params.PrincipalPoint.X, params.PrincipalPoint.Y)))
	fmt.Fprintln(w, field("Horizontal FOV", params.HorizontalFieldOfView))

	pose, err := geometry.PoseOf(params)
	if err != nil {
		fmt.Fprintln(w, field("Pose", warningStyle.Render(err.Error())))
		return err
	}
	fmt.Fprintln(w, field("Location", formatVec(pose.Location.X, pose.Location.Y, pose.Location.Z)))
	fmt.Fprintln(w, field("Right", formatVec(pose.Right.X, pose.Right.Y, pose.Right.Z)))
	fmt.Fprintln(w, field("Up", formatVec(pose.Up.X, pose.Up.Y, pose.Up.Z)))
	fmt.Fprintln(w, field("Forward", formatVec(pose.Forward.X, pose.Forward.Y, pose.Forward.Z)))

	focal := geometry.FocalLengthForSensor(params.RelativeFocalLength, sensor)
	fmt.Fprintln(w, field("Focal length", fmt.Sprintf("%.2fmm (%gx%gmm sensor)", focal, sensor.Width, sensor.Height)))

	view := processing.ScaleDimensions(types.Size{Width: int(params.ImageWidth), Height: int(params.ImageHeight)}, a.cfg.Viewport.MaxSize)
	fmt.Fprintln(w, field("View", fmt.Sprintf("%dx%d", view.Width, view.Height)))
	return nil
}

// describePhoto summarises the reference photo stored in a project
func (a *app) describePhoto(data []byte) string {
	format, err := a.analyzer.DetectFormat(data)
	if err != nil {
		return warningStyle.Render("unreadable")
	}
	img, _, err := a.analyzer.LoadImageFromBytes(data)
	if err != nil {
		return format + " " + warningStyle.Render("("+err.Error()+")")
	}
	info := a.analyzer.GetImageInfo(img)
	return fmt.Sprintf("%s %dx%d (%.2f)", format, info.Width, info.Height, info.AspectRatio)
}

func formatVec(x, y, z float32) string {
	return fmt.Sprintf("(%.4g, %.4g, %.4g)", x, y, z)
}
