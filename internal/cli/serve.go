package cli

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/RevCBH/fsgit/internal/authz"
	"github.com/RevCBH/fsgit/internal/git"
	"github.com/RevCBH/fsgit/internal/rpc"
	"github.com/RevCBH/fsgit/internal/session"
	"github.com/RevCBH/fsgit/internal/template"
)

// NewServeCmd creates the "serve" command: starts the JSON-RPC dispatcher
// over stdio, or over TCP when --listen (or config ListenAddr) is set.
func NewServeCmd(app *App) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the fsgit broker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if listen != "" {
				cfg.ListenAddr = listen
			}

			git.DefaultTimeout = cfg.GitTimeout

			authorizer, err := authz.New(cfg.AllowedPaths, cfg.DeniedPaths)
			if err != nil {
				return fmt.Errorf("build path authorizer: %w", err)
			}

			defaultTemplate, err := loadTemplate(cfg.TemplatePath)
			if err != nil {
				return fmt.Errorf("load commit template: %w", err)
			}

			store, err := session.NewStore(cfg.SessionDir)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}

			logger := log.New(cmd.ErrOrStderr(), "fsgitd: ", log.LstdFlags)
			server := rpc.NewServer(rpc.Deps{
				DefaultTemplate: defaultTemplate,
				Authorizer:      authorizer,
				Sessions:        session.NewManager(store),
			}, logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			handler := NewSignalHandler(cancel)
			handler.Start()
			defer handler.Stop()

			if cfg.ListenAddr != "" {
				ln, err := net.Listen("tcp", cfg.ListenAddr)
				if err != nil {
					return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
				}
				defer ln.Close()
				logger.Printf("listening on %s", cfg.ListenAddr)
				return server.ServeTCP(ctx, ln)
			}

			logger.Printf("serving over stdio")
			return server.ServeStdio(ctx, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Serve over TCP at this address instead of stdio")
	return cmd
}

// loadTemplate loads the built-in default commit template, or the override
// at path when non-empty.
func loadTemplate(path string) (template.CommitTemplate, error) {
	if path == "" {
		return template.LoadDefault()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return template.CommitTemplate{}, err
	}
	return template.ParseTemplateFile(data)
}
