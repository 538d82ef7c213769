// oreon/lumen · watchthelight <wtl>

package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle the blue light filter (manual mode only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			return a.ctrl.ToggleFilter(ctx)
		})
	},
}

var manualCmd = &cobra.Command{
	Use:   "manual",
	Short: "Toggle between manual and automatic mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			return a.ctrl.ToggleManualMode(ctx)
		})
	},
}

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Switch to automatic mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			return a.ctrl.SwitchToAutomatic(ctx)
		})
	},
}

var forceManualCmd = &cobra.Command{
	Use:   "force-manual",
	Short: "Switch to manual mode",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			return a.ctrl.SwitchToManual(ctx)
		})
	},
}

func init() {
	RootCmd.AddCommand(toggleCmd, manualCmd, autoCmd, forceManualCmd)
}

// withApp wires the component graph, runs fn, and tears down.
func withApp(fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(verbose)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(context.Background(), a)
}
