package providers

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"s2t/cmd/s2t/cmd/cli"
	"s2t/internal/app/api/provider"
)

var checkHealth bool

func init() {
	Cmd.Flags().BoolVar(&checkHealth, "health", false, "run a health check against every configured backend")
}

// Cmd represents the providers command
var Cmd = &cobra.Command{
	Use:   "providers",
	Short: "List the available recognition backends",
	Long: `List the available recognition backends

- Without a configuration, prints the backend types compiled into s2t
- Otherwise prints the configured backends, marking the default one`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		a, err := cli.Bootstrap()
		if err != nil {
			fmt.Fprintf(out, "Available backend types:\n")
			for _, name := range provider.ListRegisteredProviders() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return err
		}
		defer a.Logger.Sync()

		var health map[string]error
		if checkHealth {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			health = a.Registry.HealthCheckAll(ctx)
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tDEFAULT\tSTATUS")
		for _, name := range a.Registry.ListProviders() {
			recognizer, err := a.Registry.GetProvider(name)
			if err != nil {
				continue
			}
			info := recognizer.GetProviderInfo()

			isDefault := ""
			if name == a.Registry.DefaultName() {
				isDefault = "*"
			}
			status := "-"
			if checkHealth {
				status = "healthy"
				if herr := health[name]; herr != nil {
					status = "unhealthy: " + herr.Error()
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, info.Type, isDefault, status)
		}
		return w.Flush()
	},
}
