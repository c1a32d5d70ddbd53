package main

import (
	"fmt"

	"delivery-notify-service/internal/adapters/messaging"
	"delivery-notify-service/internal/app"

	"github.com/spf13/cobra"
)

// noSend keeps read-only commands from building the configured gateway sender.
func noSend() app.Overrides {
	return app.Overrides{Sender: messaging.NewLogSender()}
}

func newReplyCmd(c *cli) *cobra.Command {
	var phone, text string

	cmd := &cobra.Command{
		Use:   "reply",
		Short: "Process a customer message as if it arrived from the gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context(), nil, app.Overrides{})
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Dispatcher.HandleInbound(cmd.Context(), phone, text)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "delivery %s/%s: %s\n", res.Key.BatchID, res.Key.Phone, res.Delivery.Status)
			if len(res.Outcome.Changed) > 0 {
				fmt.Fprintf(out, "changed: %v\n", res.Outcome.Changed)
			}
			if res.Outcome.Degraded {
				fmt.Fprintln(out, "extraction degraded")
			}
			if res.Outcome.Reply != "" {
				fmt.Fprintf(out, "reply: %s\n", res.Outcome.Reply)
			}
			if res.SendErr != nil {
				fmt.Fprintf(out, "reply not sent: %v\n", res.SendErr)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "customer phone")
	cmd.Flags().StringVar(&text, "text", "", "message text")
	_ = cmd.MarkFlagRequired("phone")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
