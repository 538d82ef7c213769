// oreon/lumen · watchthelight <wtl>

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show location, weather, mode, and file paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			st := a.ctrl.Status(ctx)

			weatherLine := "Unknown"
			tempLine := "Unknown"
			if st.HaveWeather {
				weatherLine = fmt.Sprintf("%s (%s)", st.Weather.Condition, title(st.Weather.Description))
				if st.Weather.Stale {
					weatherLine += " [cached]"
				}
				tempLine = fmt.Sprintf("%.1f°C", st.Weather.TempC)
			}

			out := cmd.OutOrStdout()
			rule := strings.Repeat("=", 50)
			fmt.Fprintln(out, rule)
			fmt.Fprintln(out, "LOCATION & WEATHER")
			fmt.Fprintf(out, "   Location: %s, %s\n", st.Place.City, st.Place.Country)
			fmt.Fprintf(out, "   Weather: %s\n", weatherLine)
			fmt.Fprintf(out, "   Temperature: %s\n", tempLine)
			fmt.Fprintf(out, "   Time Period: %s\n", title(st.Period))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "SCREEN SETTINGS")
			fmt.Fprintf(out, "   Screen Temperature: %dK\n", st.LastTemp)
			fmt.Fprintf(out, "   Mode: %s\n", title(st.Mode))
			filter := "OFF"
			if st.FilterOn {
				filter = "ON"
			}
			fmt.Fprintf(out, "   Blue Light Filter: %s\n", filter)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "FILES")
			fmt.Fprintf(out, "   Config: %s\n", a.paths.ConfigFile)
			fmt.Fprintf(out, "   State: %s\n", a.paths.StateFile)
			fmt.Fprintf(out, "   Logs: %s\n", a.paths.LogFile)
			fmt.Fprintf(out, "   Journal: %s\n", a.paths.JournalFile)

			if a.journal != nil {
				entries, err := a.journal.Recent(5)
				if err == nil && len(entries) > 0 {
					fmt.Fprintln(out)
					fmt.Fprintln(out, "RECENT EVENTS")
					for _, e := range entries {
						outcome := "ok"
						if !e.Success {
							outcome = "error: " + e.Error
						}
						fmt.Fprintf(out, "   %s  %-12s %s\n",
							e.StartedAt.Local().Format("2006-01-02 15:04:05"), e.Type, outcome)
					}
				}
			}
			fmt.Fprintln(out, rule)
			return nil
		})
	},
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

// title uppercases the first letter of each word, matching the original
// status output.
func title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
