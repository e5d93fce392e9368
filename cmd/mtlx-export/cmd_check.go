package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atlas-foundry/mtlx-go-sdk/mtlx"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.mtlx>...",
		Short: "Parse and validate MaterialX documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				doc, err := mtlx.ParseFileStrict(path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					var verr *mtlx.ValidationError
					if errors.As(err, &verr) {
						for _, d := range verr.Details {
							fmt.Fprintf(out, "  %s %q %s: %s\n", d.Element, d.Name, d.Field, d.Message)
						}
					}
					continue
				}
				a.log.Debug("document ok", "path", path, "elements", doc.Len())
				fmt.Fprintf(out, "ok   %s (%d look(s))\n", path, len(doc.Looks))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d document(s) failed validation", failed, len(args))
			}
			return nil
		},
	}
}
