package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/apidash/internal/catalog"
	"github.com/leapstack-labs/apidash/internal/client"
	"github.com/leapstack-labs/apidash/internal/insights"
	"github.com/leapstack-labs/apidash/internal/session"
	"github.com/leapstack-labs/apidash/internal/tabular"
)

// NewBrowseCommand creates the browse command, an interactive REPL over the
// API resources.
func NewBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse API resources in an interactive prompt",
		Long: `Start an interactive prompt for fetching and inspecting resources.

Fetch lines name a resource with optional filters:

  posts              fetch all posts
  posts 7            fetch post 7
  posts user=3       fetch posts owned by user 3

Dot-commands act on the last successful fetch:

  .table [format]    show the current table (table, json, csv, md)
  .insights          show insights for the current data
  .raw               show the raw JSON payload
  .export [dir]      write the current table to <resource>_data.csv
  .resources         list available resources
  .help              show this help
  .quit              exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			return runBrowseREPL(cmd, cc)
		},
	}
}

func runBrowseREPL(cmd *cobra.Command, cc *CommandContext) error {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("posts"),
		readline.PcItem("comments"),
		readline.PcItem("albums"),
		readline.PcItem("photos"),
		readline.PcItem("todos"),
		readline.PcItem("users"),
		readline.PcItem(".table"),
		readline.PcItem(".insights"),
		readline.PcItem(".raw"),
		readline.PcItem(".export"),
		readline.PcItem(".resources"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "apidash> ",
		HistoryFile:     filepath.Join(os.TempDir(), "apidash_history"),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize prompt: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "apidash interactive browser (%s)\n", cc.Client.BaseURL())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type a resource name to fetch, .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	store := session.NewStore()
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := handleBrowseDotCommand(cmd, cc, store, line); quit {
				break
			}
			continue
		}

		if err := handleBrowseFetch(cmd, cc, store, line); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

// handleBrowseFetch parses a "<resource> [id] [user=N]" line, fetches and
// shows the overview plus table.
func handleBrowseFetch(cmd *cobra.Command, cc *CommandContext, store *session.Store, line string) error {
	req, err := parseBrowseLine(line)
	if err != nil {
		return err
	}

	result, err := cc.Client.Fetch(cmd.Context(), req)
	if err != nil {
		return err
	}
	if result.NoData() {
		cc.Renderer.Warnln("No data found for " + req.Resource.Name + ".")
		return nil
	}

	state := store.Set(req.Resource, result.Payload, result.Raw)
	renderOverview(cc.Renderer, state)
	return renderResult(cc.Renderer.Writer(), state.Table, "table")
}

// parseBrowseLine parses "<resource> [id] [user=N]" into a fetch request.
func parseBrowseLine(line string) (client.Request, error) {
	parts := strings.Fields(line)
	res, err := resolveResource(parts[0])
	if err != nil {
		return client.Request{}, err
	}

	req := client.Request{Resource: res}
	for _, arg := range parts[1:] {
		if after, found := strings.CutPrefix(arg, "user="); found {
			n, err := strconv.Atoi(after)
			if err != nil || n < 0 {
				return client.Request{}, fmt.Errorf("invalid user filter %q", arg)
			}
			req.UserID = n
			continue
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return client.Request{}, fmt.Errorf("invalid argument %q (expected an id or user=N)", arg)
		}
		req.ID = n
	}
	return req, nil
}

// handleBrowseDotCommand executes a dot-command. Returns true when the REPL
// should exit.
func handleBrowseDotCommand(cmd *cobra.Command, cc *CommandContext, store *session.Store, line string) bool {
	parts := strings.Fields(line)
	out := cmd.OutOrStdout()

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		_, _ = fmt.Fprintln(out, cmd.Long)

	case ".resources":
		for _, r := range catalog.All() {
			_, _ = fmt.Fprintf(out, "  %-10s /%s\n", strings.ToLower(r.Name), r.Path)
		}

	case ".table":
		state, ok := store.Current()
		if !ok {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No data yet; fetch a resource first")
			return false
		}
		format := "table"
		if len(parts) > 1 {
			format = parts[1]
		}
		if err := renderResult(cc.Renderer.Writer(), state.Table, format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}

	case ".insights":
		state, ok := store.Current()
		if !ok {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No data yet; fetch a resource first")
			return false
		}
		renderInsights(cc.Renderer, insights.Compute(state.Resource, state.Table))

	case ".raw":
		state, ok := store.Current()
		if !ok {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No data yet; fetch a resource first")
			return false
		}
		if err := renderRaw(cc.Renderer.Writer(), state.Raw); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}

	case ".export":
		state, ok := store.Current()
		if !ok {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No data yet; fetch a resource first")
			return false
		}
		dir := cc.Config.ExportDir
		if len(parts) > 1 {
			dir = parts[1]
		}
		path := filepath.Join(dir, state.Resource.ExportFilename())
		if err := exportTable(state.Table, path); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return false
		}
		_, _ = fmt.Fprintf(out, "Exported %d records to %s\n", state.Table.Len(), path)

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command %s (try .help)\n", parts[0])
	}

	return false
}

// exportTable writes a table to a CSV file, creating parent directories as
// needed.
func exportTable(t *tabular.Table, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return tabular.WriteCSV(f, t)
}
