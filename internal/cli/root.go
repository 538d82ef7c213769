// oreon/lumen · watchthelight <wtl>

package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oreonproject/lumen/internal/daemon"
)

var (
	configDir string
	verbose   bool
)

// RootCmd is the top-level command. With no subcommand it runs the daemon
// loop, matching the service this replaces.
var RootCmd = &cobra.Command{
	Use:   "lumen",
	Short: "Weather-aware display color temperature service",
	Long: "Lumen adjusts the display color temperature from time of day and weather,\n" +
		"driving an external utility such as hyprsunset. Run without arguments to\n" +
		"start the daemon loop; subcommands switch modes or inspect state.",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon(cmd.Context())
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", "", "Config directory (default: ~/.config/lumen)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Also log to stderr")
}

func runDaemon(parent context.Context) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := daemon.NewServer(a.paths.Socket, a.ctrl, a.emitter)
	if err := server.Listen(); err != nil {
		a.logger.Warn("IPC server unavailable, continuing without it", "error", err)
	} else {
		go server.Serve()
		defer server.Close()
	}

	d := daemon.New(a.ctrl, a.store, a.notifier, a.emitter, a.logger,
		a.cfg.Daemon.Interval.Duration, a.cfg.Daemon.Backoff.Duration)
	return d.Run(ctx)
}
