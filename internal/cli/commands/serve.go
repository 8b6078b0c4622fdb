package commands

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/apidash/internal/cli/config"
	"github.com/leapstack-labs/apidash/internal/client"
	"github.com/leapstack-labs/apidash/internal/dash"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard server",
		Long: `Start a local web server exposing the dashboard JSON API.

The API mirrors the CLI: fetch any resource as a normalized table, compute
its insights or download it as CSV. Each browser gets its own session, so
concurrent visitors never see each other's data.`,
		Example: `  # Start on the default port
  apidash serve

  # Start on a custom port without opening a browser
  apidash serve --port 3000 --no-browser

  # Reload the API client when the config file changes
  apidash serve --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Reload config when the file changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc := NewCommandContext(cmd)
	serveCfg := cc.Config.GetServeConfig()

	// CLI flags override config file
	port := serveCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	autoOpen := serveCfg.AutoOpen
	if opts.NoBrowser {
		autoOpen = false
	}
	watch := serveCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	configFile := config.GetConfigFileUsed()
	server := dash.NewServer(dash.Config{
		Client:        cc.Client,
		Port:          port,
		Watch:         watch,
		ConfigFile:    configFile,
		SessionSecret: sessionSecret(),
		Logger:        cc.Logger,
		Reload: func() (*client.Client, error) {
			cfg, err := config.LoadConfig(configFile, nil)
			if err != nil {
				return nil, err
			}
			return client.New(cfg.BaseURL, cfg.Timeout(), cc.Logger), nil
		},
	})

	if autoOpen {
		go openBrowser(fmt.Sprintf("http://localhost:%d", port))
	}

	cc.Renderer.Printf("Starting dashboard server on http://localhost:%d\n", port)
	cc.Renderer.Println("Press Ctrl+C to stop")

	return server.Serve(cmd.Context())
}

// sessionSecret returns the cookie signing secret. Falls back to a fixed
// development secret when the environment does not provide one.
func sessionSecret() string {
	if secret := os.Getenv("APIDASH_SESSION_SECRET"); secret != "" {
		return secret
	}
	return "apidash-dev-secret-change-in-production" //nolint:gosec
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
