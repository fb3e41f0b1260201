package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/slider"
	"github.com/germanamz/localwriter/pkg/format"
	"github.com/germanamz/localwriter/pkg/session"
	"github.com/spf13/cobra"
)

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	var (
		temperature float64
		show        bool
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the saved generation settings",
		Long: "Show or change the saved generation settings.\n" +
			"Without flags an interactive form is shown.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			// No generator: this session only reads and writes the temperature.
			sess := session.New(nil, svc.prefs)
			out := cmd.OutOrStdout()

			switch {
			case show:
				printTemperature(out, sess.Temperature())
				return nil
			case cmd.Flags().Changed("temperature"):
				printTemperature(out, sess.SetTemperature(temperature))
				return nil
			}

			v := slider.Snap(sess.Temperature())

			err = huh.NewForm(huh.NewGroup(
				huh.NewSelect[float64]().
					Title("Temperature").
					Description("Higher values give more varied output.").
					Options(temperatureOptions()...).
					Value(&v),
			)).
				WithInput(cmd.InOrStdin()).
				WithOutput(out).
				RunWithContext(cmd.Context())
			if err != nil {
				return err
			}

			printTemperature(out, sess.SetTemperature(v))

			return nil
		},
	}

	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 0, "set the saved temperature, 0.0 to 1.0")
	cmd.Flags().BoolVar(&show, "show", false, "print the saved settings and exit")
	cmd.MarkFlagsMutuallyExclusive("temperature", "show")

	return cmd
}

// temperatureOptions lists the slider grid, 0.0 to 1.0 in 0.1 steps.
func temperatureOptions() []huh.Option[float64] {
	options := make([]huh.Option[float64], 0, 11)
	for i := range 11 {
		v := float64(i) / 10
		label := fmt.Sprintf("%s  %s", format.FmtTemperature(v), format.TemperatureDescription(v))
		options = append(options, huh.NewOption(label, v))
	}

	return options
}

func printTemperature(w io.Writer, v float64) {
	fmt.Fprintf(w, "Temperature: %s (%s)\n", format.FmtTemperature(v), format.TemperatureDescription(v))
}
