package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/trio-ev/internal/client"
)

var statusURL string

func init() {
	statusCmd.Flags().StringVar(&statusURL, "url", "", "Base URL of the calculator (defaults to client.url)")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check a running calculator's health and readiness",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := cfg.Client.URL
		if statusURL != "" {
			url = statusURL
		}

		clientCfg := client.DefaultConfig(url)
		clientCfg.Timeout = cfg.GetClientTimeout()
		clientCfg.MaxRetries = cfg.Client.RetryAttempts

		statusLog := logrus.New()
		statusLog.SetLevel(logrus.WarnLevel)

		c := client.New(clientCfg, statusLog)
		defer c.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return runStatus(ctx, cmd.OutOrStdout(), c)
	},
}

// runStatus prints health and readiness and fails when the service is not ready.
func runStatus(ctx context.Context, w io.Writer, c *client.Client) error {
	h, err := c.Health(ctx)
	if err != nil {
		fmt.Fprintln(w, "Health:  UNAVAILABLE")
		return fmt.Errorf("health check failed: %w", err)
	}
	fmt.Fprintf(w, "Health:  %s (%s %s)\n", h.Status, h.Service, h.Version)

	r, err := c.Ready(ctx)
	if err != nil {
		fmt.Fprintln(w, "Ready:   UNKNOWN")
		return fmt.Errorf("readiness check failed: %w", err)
	}
	fmt.Fprintf(w, "Ready:   %s\n", r.Status)

	names := make([]string, 0, len(r.Checks))
	for name := range r.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, r.Checks[name])
	}

	if r.Status != "ok" {
		return fmt.Errorf("service is not ready")
	}
	return nil
}
