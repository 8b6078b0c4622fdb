// Package commands implements the apidash subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/apidash/internal/catalog"
	"github.com/leapstack-labs/apidash/internal/cli/config"
	"github.com/leapstack-labs/apidash/internal/cli/output"
	"github.com/leapstack-labs/apidash/internal/client"
	"github.com/leapstack-labs/apidash/internal/session"
)

// configKey and rendererKey store the loaded config and renderer in the
// command context. The cli package populates them in PersistentPreRunE.
type (
	configKey   struct{}
	rendererKey struct{}
)

// WithConfig stores the config in a context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// WithRenderer stores the renderer in a context.
func WithRenderer(ctx context.Context, r *output.Renderer) context.Context {
	return context.WithValue(ctx, rendererKey{}, r)
}

// GetConfig retrieves the config from the command context, falling back to
// defaults when none was stored.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		BaseURL:        config.DefaultBaseURL,
		TimeoutSeconds: config.DefaultTimeoutSeconds,
		ExportDir:      config.DefaultExportDir,
		OutputFormat:   config.DefaultOutput,
	}
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(cmd *cobra.Command) *output.Renderer {
	if r, ok := cmd.Context().Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeAuto)
}

// CommandContext bundles everything a subcommand needs.
type CommandContext struct {
	Config   *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Client   *client.Client
}

// NewCommandContext assembles the command context from the cobra command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	return &CommandContext{
		Config:   cfg,
		Logger:   logger,
		Renderer: GetRenderer(cmd),
		Client:   client.New(cfg.BaseURL, cfg.Timeout(), logger),
	}
}

// newState wraps a fetch result in a throwaway session snapshot. One-shot
// commands have no session to carry over, so every invocation starts fresh.
func (cc *CommandContext) newState(result *client.Result) *session.State {
	return session.NewStore().Set(result.Resource, result.Payload, result.Raw)
}

// resolveResource maps a positional argument to a catalog entry.
func resolveResource(name string) (catalog.Resource, error) {
	res, ok := catalog.Lookup(name)
	if !ok {
		return catalog.Resource{}, fmt.Errorf("unknown resource %q (expected one of: posts, comments, albums, photos, todos, users)", name)
	}
	return res, nil
}

// resourceNameCompletion offers the six resource names for shell completion.
func resourceNameCompletion(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, r := range catalog.All() {
		names = append(names, r.Path)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// fetchFlags are the id/owner filter flags shared by fetch-like commands.
type fetchFlags struct {
	ID     int
	UserID int
}

func (f *fetchFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.ID, "id", 0, "Fetch a single record by id (0 for all)")
	cmd.Flags().IntVar(&f.UserID, "user", 0, "Filter by owning user id (Posts only, 0 for all)")
}

// request builds the client request, warning once when the owner filter is
// given for a resource that does not define it.
func (f *fetchFlags) request(cmd *cobra.Command, res catalog.Resource) (client.Request, error) {
	if f.ID < 0 || f.UserID < 0 {
		return client.Request{}, fmt.Errorf("id filters must not be negative")
	}
	if f.UserID > 0 && !res.SupportsOwnerFilter() {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "note: --user is only supported for posts; ignoring for %s\n", res.Name)
	}
	return client.Request{Resource: res, ID: f.ID, UserID: f.UserID}, nil
}
