package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"delivery-notify-service/internal/domain"

	"github.com/spf13/cobra"
)

func newDeliveriesCmd(c *cli) *cobra.Command {
	var dispatcher string

	cmd := &cobra.Command{
		Use:   "deliveries",
		Short: "List every delivery routed by a dispatcher, newest batch first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context(), nil, noSend())
			if err != nil {
				return err
			}
			defer a.Close()

			d := a.Dispatcher
			list := d.Repo.DeliveriesForDispatcher(d.Phones.Normalize(strings.TrimSpace(dispatcher)))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "BATCH\tSEQ\tPHONE\tSTATUS\tHOME\tDROP\tAPT\tFLOOR\tCODE")
			for _, del := range list {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					del.BatchID, del.SequenceNumber, del.RecipientPhone, del.Status,
					slot(del, domain.SlotSomeoneHome), slot(del, domain.SlotDropLocation),
					slot(del, domain.SlotApartment), slot(del, domain.SlotFloor), slot(del, domain.SlotEntranceCode))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dispatcher, "dispatcher", "", "dispatcher phone")
	_ = cmd.MarkFlagRequired("dispatcher")
	return cmd
}

func slot(d *domain.Delivery, s domain.Slot) string {
	if v, ok := d.Known(s); ok {
		return v
	}
	return "-"
}
