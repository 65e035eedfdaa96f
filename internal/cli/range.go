package cli

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
)

var rangeFlags eventFlags

var rangeCmd = &cobra.Command{
	Use:   "range <event-name> -- <command> [args...]",
	Short: "Time a command as a start/end range",
	Long: `Run a command between a "start" and an "end" record for the named event.

If the command fails, an "error" record carrying the failure is written
before the "end" record, and evtrace exits with the command's exit code.
The command inherits stdin, stdout, and stderr.

Examples:
  evtrace range -r req-42 prefill -- python run_prefill.py
  evtrace range -r req-42 -e stage=decode decode -- ./decode.sh --batch 8`,
	Args: func(cmd *cobra.Command, args []string) error {
		dash := cmd.ArgsLenAtDash()
		if dash != 1 {
			return fmt.Errorf("expected exactly one event name before --")
		}
		if len(args) < 2 {
			return fmt.Errorf("missing command after --")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := openRecorder()
		if err != nil {
			return err
		}

		// Stdin belongs to the wrapped command unless extra data is read from it.
		extra, err := rangeFlags.extraData(cmd.InOrStdin())
		if err != nil {
			return err
		}

		requestID := rangeFlags.resolveRequestID()
		if rangeFlags.printID {
			fmt.Fprintln(cmd.OutOrStdout(), requestID)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		name, argv := args[0], args[1:]
		return rec.Range(requestID, name, extra, func() error {
			child := exec.CommandContext(ctx, argv[0], argv[1:]...)
			child.Stdin = cmd.InOrStdin()
			child.Stdout = cmd.OutOrStdout()
			child.Stderr = cmd.ErrOrStderr()
			return child.Run()
		})
	},
}

// ExitCode maps an error returned by Execute to a process exit status. A
// failed wrapped command keeps its own exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}

func init() {
	rangeFlags.register(rangeCmd)
	rootCmd.AddCommand(rangeCmd)
}
