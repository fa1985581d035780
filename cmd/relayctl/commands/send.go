package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// send <to> <payload>: buffer an already-encrypted payload for <to>.
func sendCmd() *cobra.Command {
	var (
		from      string
		messageID string
	)
	cmd := &cobra.Command{
		Use:   "send <to> <payload>",
		Short: "Buffer an encrypted payload for a recipient",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if messageID == "" {
				messageID = uuid.New().String()
			}
			if err := client.Send(commandContext(cmd), from, args[0], args[1], messageID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), messageID)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "sender id (default anonymous)")
	cmd.Flags().StringVar(&messageID, "id", "", "message id; resending the same id overwrites (default random)")
	return cmd
}
