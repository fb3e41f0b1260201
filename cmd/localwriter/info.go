package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

func newInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the backend's name, version and endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			info, err := svc.client.Info(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", info.Message, info.Version)

			if len(info.Endpoints) == 0 {
				return nil
			}

			width := 0
			for name := range info.Endpoints {
				width = max(width, len(name))
			}

			fmt.Fprintln(out, "Endpoints:")
			for _, name := range slices.Sorted(maps.Keys(info.Endpoints)) {
				fmt.Fprintf(out, "  %-*s  %s\n", width, name, info.Endpoints[name])
			}

			return nil
		},
	}
}
