package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"connwatch/config"
	"connwatch/internals/app"
	"connwatch/internals/modules/diagnostics"
	"connwatch/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type DiagnoseCmd struct {
	flags   *GlobalFlags
	JSON    bool
	Verbose bool
	prober  diagnostics.Prober
}

func NewDiagnoseCmd(flags *GlobalFlags) *cobra.Command {
	return newDiagnoseCmd(flags, nil)
}

// newDiagnoseCmd uses prober when non-nil instead of the network.
func newDiagnoseCmd(flags *GlobalFlags, prober diagnostics.Prober) *cobra.Command {
	c := &DiagnoseCmd{flags: flags, prober: prober}

	cobraCommand := &cobra.Command{
		Use:   "diagnose [--json] [--verbose]",
		Short: "Runs one diagnostics sweep and prints the suggestions",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	cobraCommand.Flags().BoolVar(&c.JSON, "json", false, "Print the full result as JSON")
	cobraCommand.Flags().BoolVarP(&c.Verbose, "verbose", "v", false, "Log probe activity to stderr")

	return cobraCommand
}

func (c *DiagnoseCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(c.flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Nop()
	if c.Verbose {
		log = logger.InitWithWriter(cfg.Env, cfg.ServiceName, cmd.ErrOrStderr())
	}

	prober := c.prober
	if prober == nil {
		prober = app.NewDiagnosticsProber()
	}

	res := app.BuildAggregator(cfg, prober, log).Run(cmd.Context())
	if c.JSON {
		return writeResultJSON(cmd.OutOrStdout(), res)
	}
	return writeResultText(cmd.OutOrStdout(), res, log)
}

func writeResultJSON(w io.Writer, res diagnostics.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func writeResultText(w io.Writer, res diagnostics.Result, log *zerolog.Logger) error {
	var sb strings.Builder

	if len(res.Reachable) == 0 {
		sb.WriteString("Reachable: none\n")
	} else {
		fmt.Fprintf(&sb, "Reachable: %s\n", strings.Join(res.Reachable, ", "))
	}

	if t := res.Timing; t != nil {
		fmt.Fprintf(&sb, "Timing: dns %dms, connect %dms, ttfb %dms, download %dms, total %dms\n",
			t.DNSMs, t.ConnectMs, t.TTFBMs, t.DownloadMs, t.TotalMs)
	}

	if res.Failed {
		sb.WriteString("The sweep did not complete.\n")
	}

	if len(res.Suggestions) > 0 {
		sb.WriteString("Suggestions:\n")
		for _, s := range res.Suggestions {
			fmt.Fprintf(&sb, "  - %s\n", s)
		}
	}

	log.Debug().Str("run_id", res.RunID).Int64("duration_ms", res.DurationMs).Msg("diagnostics printed")

	_, err := io.WriteString(w, sb.String())
	return err
}
