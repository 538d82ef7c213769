// oreon/lumen · watchthelight <wtl>

package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oreonproject/lumen/internal/fault"
)

var testCmd = &cobra.Command{
	Use:   "test <kelvin>",
	Short: "Apply a temperature directly, bypassing mode logic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kelvin, err := strconv.Atoi(args[0])
		if err != nil {
			return fault.Newf(fault.KindUsage, "invalid temperature value %q", args[0])
		}
		return withApp(func(ctx context.Context, a *app) error {
			if err := a.ctrl.ApplyDirect(kelvin); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %dK\n", kelvin)
			return nil
		})
	},
}

var refreshLocationCmd = &cobra.Command{
	Use:   "refresh-location",
	Short: "Drop the location cache and force a fresh lookup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			lat, lon := a.location.Refresh(ctx)
			place := a.location.LocationDetails()
			fmt.Fprintf(cmd.OutOrStdout(), "Location data refreshed: %s, %s (%.4f, %.4f)\n",
				place.City, place.Country, lat, lon)
			return nil
		})
	},
}

func init() {
	RootCmd.AddCommand(testCmd, refreshLocationCmd)
}
