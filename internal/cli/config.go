package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/evtrace/internal/observability"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Width(20)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective recorder configuration",
	Long: `Show the configuration evtrace records with, after merging defaults,
.evtrace.yaml, EVTRACE_* environment variables, and --sink/--channel flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Config == nil {
			return fmt.Errorf("configuration not loaded")
		}

		sink, channel := Config.Sink, Config.Channel
		if sinkOverride != "" {
			sink = sinkOverride
		}
		if channelOverride != "" {
			channel = channelOverride
		}

		source := ConfigSource
		if source == "" {
			source = "defaults"
		}

		metricsFile := Config.MetricsFile
		if metricsFile == "" {
			metricsFile = mutedStyle.Render("(disabled)")
		}

		bound := observability.ChannelSink(channel)
		if bound == "" {
			bound = mutedStyle.Render("(not bound in this process)")
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, titleStyle.Render("evtrace configuration"))
		fmt.Fprintln(w)
		rows := [][2]string{
			{"Source", source},
			{"Sink", sink},
			{"Channel", channel},
			{"Bound sink", bound},
			{"File lock", fmt.Sprintf("%t", Config.FileLock)},
			{"Log level", Config.LogLevel},
			{"Metrics namespace", Config.MetricsNamespace},
			{"Metrics file", metricsFile},
		}
		for _, row := range rows {
			fmt.Fprintln(w, keyStyle.Render(row[0]+":")+valueStyle.Render(row[1]))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
