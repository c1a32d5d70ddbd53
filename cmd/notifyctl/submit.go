package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"delivery-notify-service/internal/adapters/messaging"
	"delivery-notify-service/internal/app"
	"delivery-notify-service/internal/config"
	"delivery-notify-service/internal/services"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// routeFile is the YAML layout accepted by "notifyctl submit".
//
//	dispatcher_phone: 050-111-2222
//	stops:
//	  - name: Dana
//	    phone: 050-123-4567
//	  - seq: 5
//	    phone: 052-123-4567
type routeFile struct {
	DispatcherPhone string `yaml:"dispatcher_phone"`
	Stops           []struct {
		Seq   int    `yaml:"seq"`
		Name  string `yaml:"name"`
		Phone string `yaml:"phone"`
	} `yaml:"stops"`
}

func readRouteFile(path string) (services.RouteRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return services.RouteRequest{}, fmt.Errorf("read route file: %w", err)
	}

	var rf routeFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return services.RouteRequest{}, fmt.Errorf("read route file %q: %w", path, err)
	}

	req := services.RouteRequest{DispatcherPhone: rf.DispatcherPhone}
	for _, st := range rf.Stops {
		req.Stops = append(req.Stops, services.RouteStop{Seq: st.Seq, Name: st.Name, Phone: st.Phone})
	}
	return req, nil
}

func newSubmitCmd(c *cli) *cobra.Command {
	var file string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Create a batch from a route file and greet every recipient",
		Long: `Create a batch from a YAML route file and greet every recipient.

With --dry-run the batch is built in memory and greetings are only logged:
nothing is sent and the configured store is not touched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := readRouteFile(file)
			if err != nil {
				return err
			}

			var mutate func(*config.Settings)
			var ov app.Overrides
			if dryRun {
				mutate = func(s *config.Settings) { s.StoreDriver = "memory" }
				ov.Sender = messaging.NewLogSender()
			}

			a, err := c.open(cmd.Context(), mutate, ov)
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.Dispatcher.SubmitRoute(cmd.Context(), req)
			if rep != nil {
				printReport(cmd.OutOrStdout(), rep)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "route file (YAML)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build the batch without sending or saving")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printReport(out io.Writer, rep *services.BatchReport) {
	fmt.Fprintf(out, "batch %s: %d sent, %d failed\n", rep.Batch.BatchID, rep.Sent, len(rep.Failures))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tNAME\tPHONE\tETA")
	for _, d := range rep.Batch.Deliveries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", d.SequenceNumber, d.RecipientName, d.RecipientPhone, d.EstimatedTimeRange)
	}
	_ = tw.Flush()

	for _, f := range rep.Failures {
		fmt.Fprintf(out, "not sent: seq %d %s: %v\n", f.SequenceNumber, f.Phone, f.Err)
	}
}
