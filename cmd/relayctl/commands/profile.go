package commands

import (
	"github.com/neochat/relay/internal/models"
	"github.com/neochat/relay/internal/relayclient"
	"github.com/spf13/cobra"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Read and publish directory profiles",
	}
	cmd.AddCommand(profileSetCmd(), profileGetCmd())
	return cmd
}

// profile set <id> <username>: replace the profile for <id>.
func profileSetCmd() *cobra.Command {
	var (
		status string
		avatar string
	)
	cmd := &cobra.Command{
		Use:   "set <id> <username>",
		Short: "Publish (fully replace) a profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			update := relayclient.ProfileUpdate{
				ID:       args[0],
				Username: args[1],
				Status:   models.UserStatus(status),
			}
			if avatar != "" {
				update.AvatarURL = &avatar
			}
			profile, err := client.UpsertProfile(commandContext(cmd), update)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), profile)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "presence: online, offline or typing (default offline)")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar URL")
	return cmd
}

func profileGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := client.GetProfile(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), profile)
		},
	}
}
