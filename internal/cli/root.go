package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var (
	sinkOverride    string
	channelOverride string
)

var rootCmd = &cobra.Command{
	Use:   "evtrace",
	Short: "Record request-scoped trace events as JSON Lines",
	Long: `evtrace records the start, end, and instantaneous occurrence of named
events tied to a request identifier. Records are appended as one JSON object
per line to a sink file for later latency breakdowns.

Use "evtrace mark" for an instant and "evtrace range" to time a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "evtrace %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sinkOverride, "sink", "", "Sink file to append records to (overrides config)")
	rootCmd.PersistentFlags().StringVar(&channelOverride, "channel", "", "Channel the sink is bound under (overrides config)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
