package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamiza/kamiza/internal/backend"
	"github.com/kamiza/kamiza/internal/output"
)

var (
	eventsOutput string
	eventsPublic bool
)

// eventSource is the part of the backend client the events command needs.
type eventSource interface {
	Events(ctx context.Context) ([]backend.Event, error)
	ReducedEvents(ctx context.Context) (json.RawMessage, error)
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List events from the booking backend",
	Long: `List events from the booking backend. By default the full list is fetched
with the configured service account and shown with its registration status
(open, closed, or not yet open until events.registration_period_days before
the deadline); --public prints the reduced public list as returned by the
backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(eventsOutput)
		if err != nil {
			return err
		}
		cfg := currentConfig()
		client := backend.NewFromConfig(cfg.Backend)
		if !client.Configured() {
			return fmt.Errorf("backend.base_url is not set")
		}
		listing := output.Events{Now: time.Now(), Period: cfg.Events.RegistrationPeriod()}
		return renderEvents(cmd.Context(), client, format, eventsPublic, listing, cmd.OutOrStdout())
	},
}

// renderEvents fills listing.Items from src unless public is set.
func renderEvents(ctx context.Context, src eventSource, format output.Format, public bool, listing output.Events, w io.Writer) error {
	if public {
		raw, err := src.ReducedEvents(ctx)
		if err != nil {
			return err
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			return fmt.Errorf("backend returned invalid JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, pretty.String())
		return err
	}

	events, err := src.Events(ctx)
	if err != nil {
		return err
	}
	listing.Items = events
	rendered, err := output.Render(format, listing)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, rendered)
	return err
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().StringVarP(&eventsOutput, "output", "o", "table", "output format: table, json, markdown")
	eventsCmd.Flags().BoolVar(&eventsPublic, "public", false, "print the reduced public event list")
}
