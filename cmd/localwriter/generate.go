package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/germanamz/localwriter/pkg/format"
	"github.com/germanamz/localwriter/pkg/session"
	"github.com/spf13/cobra"
)

// fixedTemperature is a TemperatureStore that always restores one value and
// never persists, so a --temperature override does not outlive the command.
type fixedTemperature float64

func (f fixedTemperature) Load() (float64, bool) { return float64(f), true }
func (fixedTemperature) Save(float64)            {}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var temperature float64

	cmd := &cobra.Command{
		Use:   "generate [prompt...]",
		Short: "Generate content for a prompt and print it",
		Long: "Generate content for a prompt without opening the interactive writer.\n" +
			"The prompt is taken from the arguments, or read from stdin when none are given.\n" +
			"The output goes to stdout and the generation details to stderr.",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			svc, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			var store session.TemperatureStore = svc.prefs
			if cmd.Flags().Changed("temperature") {
				store = fixedTemperature(temperature)
			}

			sess := session.New(svc.client, store)
			if err := sess.SetPrompt(prompt); err != nil {
				return err
			}

			snap, err := sess.Submit(cmd.Context())
			if err != nil {
				svc.log.Error("generate failed", "error", err)
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), snap.Output)
			printMetadata(cmd.ErrOrStderr(), snap.Metadata)

			return nil
		},
	}

	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 0, "creativity for this run only, 0.0 to 1.0 (default: the saved setting)")

	return cmd
}

func readPrompt(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}

	return string(b), nil
}

func printMetadata(w io.Writer, md *session.Metadata) {
	if md == nil {
		return
	}

	fmt.Fprintf(w, "Generated in %s · Temperature: %s · %s\n",
		format.FmtLatency(md.TimeTaken),
		format.FmtTemperature(md.Temperature),
		format.FmtTimestamp(md.Timestamp),
	)
}
