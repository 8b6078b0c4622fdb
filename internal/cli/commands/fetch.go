package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/apidash/internal/cli/output"
	"github.com/leapstack-labs/apidash/internal/insights"
)

// NewFetchCommand creates the fetch command.
func NewFetchCommand() *cobra.Command {
	var (
		filters      fetchFlags
		format       string
		showRaw      bool
		withInsights bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <resource>",
		Short: "Fetch a resource from the API and display it as a table",
		Long: `Fetch a resource collection from the remote API, normalize it into a
table and display it.

A positive --id fetches a single record and takes precedence over --user.
The --user filter narrows the collection to one owner and is only defined
for posts.`,
		Example: `  apidash fetch posts
  apidash fetch posts --id 7
  apidash fetch posts --user 3
  apidash fetch todos --format json
  apidash fetch users --insights`,
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

			if showRaw {
				return renderRaw(cc.Renderer.Writer(), state.Raw)
			}

			renderFmt := resolveFormat(cc.Renderer, format)
			if renderFmt == "table" {
				renderOverview(cc.Renderer, state)
			}
			if err := renderResult(cc.Renderer.Writer(), state.Table, renderFmt); err != nil {
				return err
			}

			if withInsights {
				cc.Renderer.Println("")
				renderInsights(cc.Renderer, insights.Compute(res, state.Table))
			}
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&format, "format", "", "Output format: table, json, csv, md (default from config)")
	cmd.Flags().BoolVar(&showRaw, "raw", false, "Print the raw JSON payload instead of a table")
	cmd.Flags().BoolVar(&withInsights, "insights", false, "Append resource insights after the table")

	return cmd
}

// resolveFormat maps an explicit --format to a render format, falling back
// to the renderer's effective mode.
func resolveFormat(r *output.Renderer, explicit string) string {
	if explicit != "" {
		return explicit
	}
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return "json"
	case output.ModeMarkdown:
		return "md"
	default:
		return "table"
	}
}
