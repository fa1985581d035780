package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// poll <recipient>: list pending envelopes, acking each printed one with --ack.
func pollCmd() *cobra.Command {
	var ack bool
	cmd := &cobra.Command{
		Use:   "poll <recipient>",
		Short: "List pending envelopes for a recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			messages, err := client.Poll(ctx, args[0])
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), messages); err != nil {
				return err
			}
			if !ack {
				return nil
			}
			for _, m := range messages {
				if err := client.Ack(ctx, args[0], m.MessageID); err != nil {
					return fmt.Errorf("ack %s: %w", m.MessageID, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&ack, "ack", false, "acknowledge every envelope after printing it")
	return cmd
}

func ackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ack <recipient> <message-id>",
		Short: "Delete one envelope",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Ack(commandContext(cmd), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
