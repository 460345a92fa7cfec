package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/habit-king/habitking/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveNoRollover, "no-rollover", false, "Disable the background month rollover")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost       string
	servePort       int
	serveNoRollover bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Habit King API server",
	Long:  `Start the HTTP API at localhost:8787 along with health checks and the month rollover job.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	// Override config from flags
	if serveHost != "" {
		d.Config.API.Host = serveHost
	}
	if servePort > 0 {
		d.Config.API.Port = servePort
	}
	if serveNoRollover {
		d.Config.Rollover.Enabled = false
	}

	return d.Serve(context.Background())
}
