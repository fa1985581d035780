package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/neochat/relay/internal/relayclient"
	"github.com/spf13/cobra"
)

var (
	relayURL string
	timeout  time.Duration

	client *relayclient.Client
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "relayctl",
		Short:         "Operate a NeoChat relay",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if relayURL == "" {
				return fmt.Errorf("no relay configured. use --relay or NEOCHAT_RELAY_URL")
			}
			client = relayclient.New(relayURL, &http.Client{Timeout: timeout})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&relayURL, "relay", os.Getenv("NEOCHAT_RELAY_URL"), "relay base URL (e.g. http://127.0.0.1:8787)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")

	root.AddCommand(statusCmd(), profileCmd(), sendCmd(), pollCmd(), ackCmd())
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
