package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/apidash/internal/insights"
)

// NewInsightsCommand creates the insights command.
func NewInsightsCommand() *cobra.Command {
	var filters fetchFlags

	cmd := &cobra.Command{
		Use:   "insights <resource>",
		Short: "Fetch a resource and display its derived summaries",
		Long: `Fetch a resource collection and print the summaries derived from it:
grouped counts, rates and per-record detail cards, depending on the
resource.`,
		Example: `  apidash insights posts
  apidash insights todos
  apidash insights posts --user 3`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: resourceNameCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)

			res, err := resolveResource(args[0])
			if err != nil {
				return err
			}
			req, err := filters.request(cmd, res)
			if err != nil {
				return err
			}

			result, err := cc.Client.Fetch(cmd.Context(), req)
			if err != nil {
				return err
			}
			if result.NoData() {
				cc.Renderer.Warnln("No data found for " + res.Name + ".")
				return nil
			}

			state := cc.newState(result)
			cc.Renderer.Println(cc.Renderer.Styles().Header1.Render(res.Name + " Insights"))
			cc.Renderer.Println("")
			renderInsights(cc.Renderer, insights.Compute(res, state.Table))
			return nil
		},
	}

	filters.register(cmd)
	return cmd
}
