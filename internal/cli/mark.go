package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var markFlags eventFlags

var markCmd = &cobra.Command{
	Use:   "mark <event-name>",
	Short: "Record an instantaneous event",
	Long: `Append a single "instant" record for the named event.

Examples:
  evtrace mark -r req-42 kv_transfer_queued
  evtrace mark -r req-42 -e bootstrap_room=7 -e peer=decode-0 handshake
  RID=$(evtrace mark --print-id request_received)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := openRecorder()
		if err != nil {
			return err
		}

		extra, err := markFlags.extraData(cmd.InOrStdin())
		if err != nil {
			return err
		}

		requestID := markFlags.resolveRequestID()
		if err := rec.Mark(requestID, args[0], extra); err != nil {
			return fmt.Errorf("recording mark: %w", err)
		}

		if markFlags.printID {
			fmt.Fprintln(cmd.OutOrStdout(), requestID)
		}
		return nil
	},
}

func init() {
	markFlags.register(markCmd)
	rootCmd.AddCommand(markCmd)
}
