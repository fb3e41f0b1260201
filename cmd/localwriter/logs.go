package main

import (
	"fmt"

	"github.com/germanamz/localwriter/pkg/apiclient"
	"github.com/spf13/cobra"
)

func newLogsCmd(opts *rootOptions) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the most recent backend log lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			lr, err := svc.client.Logs(cmd.Context(), lines)
			if err != nil {
				return err
			}

			if len(lr.Logs) == 0 {
				msg := lr.Message
				if msg == "" {
					msg = "No logs found"
				}
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
				return nil
			}

			for _, line := range lr.Logs {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Showing %d of %d entries\n", lr.Showing, lr.TotalEntries)

			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", apiclient.DefaultLogLines, "number of lines to fetch")

	return cmd
}
