package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/germanamz/localwriter/pkg/format"
	"github.com/spf13/cobra"
)

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the backend is reachable and its model loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			out := cmd.OutOrStdout()

			h, err := svc.client.CheckHealth(cmd.Context())
			if err != nil {
				svc.log.Warn("health check failed", "error", err)
				fmt.Fprintf(out, "Disconnected (%s)\n", svc.cfg.APIURL)
				return err
			}

			fmt.Fprintf(out, "Connected (%s)\n", svc.cfg.APIURL)
			fmt.Fprintf(out, "Model:  %s\n", h.ModelInfo.ModelName)
			fmt.Fprintf(out, "Status: %s\n", h.ModelInfo.Status)

			for _, k := range slices.Sorted(maps.Keys(h.ModelInfo.Extra)) {
				fmt.Fprintf(out, "  %s: %v\n", k, h.ModelInfo.Extra[k])
			}

			if h.Timestamp != "" {
				fmt.Fprintf(out, "Checked: %s\n", format.FmtTimestamp(h.Timestamp))
			}

			return nil
		},
	}
}
