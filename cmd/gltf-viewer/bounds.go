package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gltf-viewer/math"
	"gltf-viewer/scene"
)

var boundsFormat string

var boundsCmd = &cobra.Command{
	Use:   "bounds <file>",
	Short: "Print the world-space bounding boxes of a model",
	Long: `Load a glTF model without opening a window and print each mesh node's
world box, the scene box and its bounding sphere.

--format yaml or json prints the same report in machine-readable form.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runBounds,
}

func init() {
	boundsCmd.Flags().StringVarP(&boundsFormat, "format", "o", "text", "output format: text, yaml or json")
	rootCmd.AddCommand(boundsCmd)
}

func runBounds(cmd *cobra.Command, args []string) error {
	switch boundsFormat {
	case "text", "yaml", "json":
	default:
		return fmt.Errorf("unknown format %q", boundsFormat)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	asset, err := scene.LoadGLTF(cmd.Context(), args[0], scene.LoadOptions{
		Concurrency: cfg.LoadConcurrency,
		Logger:      log,
	})
	if err != nil {
		return err
	}
	if boundsFormat == "text" {
		writeBounds(cmd.OutOrStdout(), asset)
		return nil
	}
	return scene.NewBoundsReport(asset).Encode(cmd.OutOrStdout(), boundsFormat)
}

func writeBounds(w io.Writer, asset *scene.Asset) {
	fmt.Fprintf(w, "File: %s\n", asset.Path)
	fmt.Fprintf(w, "Meshes: %d  Textures: %d\n\n", len(asset.Meshes), len(asset.Textures))

	fmt.Fprintln(w, "Nodes:")
	for _, n := range asset.Renderables() {
		box, ok := n.WorldBox()
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-24s min %s  max %s\n", n.Label(), formatVec(box.Min()), formatVec(box.Max()))
	}

	box, ok := asset.BoundingBox()
	if !ok {
		fmt.Fprintln(w, "\nScene: no geometry")
		return
	}
	s := box.BoundingSphere()
	fmt.Fprintln(w, "\nScene Box:")
	fmt.Fprintf(w, "  Min:         %s\n", formatVec(box.Min()))
	fmt.Fprintf(w, "  Max:         %s\n", formatVec(box.Max()))
	fmt.Fprintf(w, "  Center:      %s\n", formatVec(box.Center))
	fmt.Fprintf(w, "  Half extent: %s\n", formatVec(box.HalfExtent))
	fmt.Fprintln(w, "\nBounding Sphere:")
	fmt.Fprintf(w, "  Center: %s\n", formatVec(s.Center))
	fmt.Fprintf(w, "  Radius: %.6f\n", s.Radius)
}

func formatVec(v math.Vec3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
