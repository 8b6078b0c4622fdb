package commands

import (
	"encoding/json"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/apidash/internal/catalog"
	"github.com/leapstack-labs/apidash/internal/cli/output"
)

// NewResourcesCommand creates the resources command.
func NewResourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List the available API resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)

			if cc.Renderer.EffectiveMode() == output.ModeJSON {
				type entry struct {
					Name        string `json:"name"`
					Endpoint    string `json:"endpoint"`
					OwnerFilter bool   `json:"owner_filter"`
					ExportFile  string `json:"export_file"`
				}
				entries := make([]entry, 0, len(catalog.All()))
				for _, r := range catalog.All() {
					entries = append(entries, entry{
						Name:        r.Name,
						Endpoint:    "/" + r.Path,
						OwnerFilter: r.SupportsOwnerFilter(),
						ExportFile:  r.ExportFilename(),
					})
				}
				enc := json.NewEncoder(cc.Renderer.Writer())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cc.Renderer.Writer())
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"Resource", "Endpoint", "Owner Filter", "Export File"})
			for _, r := range catalog.All() {
				filter := ""
				if r.SupportsOwnerFilter() {
					filter = "userId"
				}
				tw.AppendRow(table.Row{r.Name, "/" + r.Path, filter, r.ExportFilename()})
			}
			tw.Render()
			return nil
		},
	}
}
