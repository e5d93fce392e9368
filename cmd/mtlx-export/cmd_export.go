package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlas-foundry/mtlx-go-sdk/exporter"
	"github.com/atlas-foundry/mtlx-go-sdk/mtlx"
	"github.com/atlas-foundry/mtlx-go-sdk/scene"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		output       string
		format       string
		selectNames  []string
		onlySelected bool
		docVersion   string
		indent       string
		noHeader     bool
	)

	cmd := &cobra.Command{
		Use:   "export <scene.yaml|scene.gltf>",
		Short: "Export textured meshes of a scene as a MaterialX document",
		Long: `Export writes one collection, opgraph, shader, material and look per mesh
whose active material has an image texture. Meshes without one are skipped.
--select marks objects as selected and implies --only-selected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScene(args[0])
			if err != nil {
				return err
			}
			if missing := s.Select(selectNames...); len(missing) > 0 {
				return fmt.Errorf("select: no object named %s", strings.Join(missing, ", "))
			}

			opts := a.cfg.ExportOptions(a.log)
			flags := cmd.Flags()
			if flags.Changed("only-selected") {
				opts.OnlySelected = onlySelected
			}
			if len(selectNames) > 0 {
				opts.OnlySelected = true
			}
			if flags.Changed("mtlx-version") {
				opts.Version = docVersion
			}
			if flags.Changed("indent") {
				opts.Encode.Indent = indent
			}
			if noHeader {
				opts.Encode.IncludeHeader = false
			}

			to := normalizeFormat(format)
			toFile := output != "" && output != "-"

			var sum exporter.Summary
			switch {
			case to == exporter.FormatText && toFile:
				sum, err = exporter.Export(s, output, opts)
				if err != nil {
					return err
				}
			default:
				var data []byte
				data, sum, err = renderScene(cmd, s, to, opts)
				if err != nil {
					return err
				}
				if toFile {
					if err := os.WriteFile(output, data, 0o644); err != nil {
						return fmt.Errorf("write %s: %w", output, err)
					}
				} else if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return err
				}
			}

			printSummary(cmd.ErrOrStderr(), sum, output)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "destination file; stdout when empty or -")
	flags.StringVarP(&format, "format", "f", exporter.FormatMTLX, "output format: mtlx, dot, json, markdown, org, html")
	flags.StringSliceVar(&selectNames, "select", nil, "object names to mark selected (repeatable)")
	flags.BoolVar(&onlySelected, "only-selected", false, "export only selected meshes")
	flags.StringVar(&docVersion, "mtlx-version", "", "version attribute for the root element")
	flags.StringVar(&indent, "indent", mtlx.DefaultIndent, "indent per nesting level")
	flags.BoolVar(&noHeader, "no-header", false, "omit the XML prolog")
	return cmd
}

// loadScene picks the loader from the file extension.
func loadScene(path string) (*scene.Scene, error) {
	format, err := exporter.SceneFormatForPath(path)
	if err != nil {
		return nil, err
	}
	if format == exporter.FormatGLTF {
		return scene.LoadGLTF(path)
	}
	return scene.LoadYAML(path)
}

// normalizeFormat maps the user-facing "mtlx" to the registry's text renderer.
func normalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" || f == exporter.FormatMTLX || f == "xml" {
		return exporter.FormatText
	}
	return f
}

func renderScene(cmd *cobra.Command, r scene.Reader, to string, opts exporter.Options) ([]byte, exporter.Summary, error) {
	if to == exporter.FormatText {
		return exporter.Render(r, opts)
	}
	doc, sum := exporter.ExportDocument(r, opts)
	out, err := exporter.DefaultRegistry.Convert(cmd.Context(), exporter.FormatMTLX, to, doc, nil)
	if err != nil {
		return nil, sum, err
	}
	data, ok := out.([]byte)
	if !ok {
		return nil, sum, fmt.Errorf("%s renderer returned %T", to, out)
	}
	return data, sum, nil
}

func printSummary(w io.Writer, sum exporter.Summary, dest string) {
	if dest == "" || dest == "-" {
		dest = "stdout"
	}
	fmt.Fprintf(w, "exported %d look(s), skipped %d mesh(es) -> %s\n", len(sum.Exported), len(sum.Skipped), dest)
	for _, geom := range sum.Skipped {
		fmt.Fprintf(w, "  skipped %s: no image texture\n", geom)
	}
}
