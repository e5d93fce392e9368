package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlas-foundry/mtlx-go-sdk/exporter"
)

func newReportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "report <file.mtlx>",
		Short: "Summarize the looks of a MaterialX document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			out, err := exporter.DefaultRegistry.Convert(cmd.Context(), exporter.FormatMTLX, normalizeFormat(format), data, nil)
			if err != nil {
				return err
			}
			a.log.Debug("report rendered", "path", args[0], "format", format)
			_, err = cmd.OutOrStdout().Write(out.([]byte))
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", exporter.FormatMarkdown, "report format: markdown, org, html, json, dot")
	return cmd
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List registered conversions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, d := range exporter.DefaultRegistry.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", d.From, d.To)
			}
		},
	}
}
