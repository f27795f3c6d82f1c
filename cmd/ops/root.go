package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opspanel/opspanel-cli/internal/core/domain/api"
	"github.com/opspanel/opspanel-cli/internal/infrastructure/config"
	"github.com/opspanel/opspanel-cli/internal/infrastructure/httpclient"
)

// app carries the wiring every subcommand shares.
type app struct {
	cfg    config.Config
	logger *zap.Logger
}

// client builds the request pipeline for one command invocation.
func (a *app) client() *httpclient.Client {
	c := httpclient.New(httpclient.Config{
		BaseURL:   a.cfg.APIURL,
		UserAgent: "opspanel-cli/" + version,
		Timeout:   a.cfg.Timeout,
		Retry: &httpclient.BackoffPolicy{
			MaxRetries:        a.cfg.MaxRetries,
			RetryDelay:        a.cfg.RetryDelay,
			RetryableStatuses: httpclient.DefaultRetryableStatuses(),
		},
	},
		httpclient.WithLogger(a.logger),
		httpclient.WithBusySink(&stderrBusy{}),
	)
	c.SetTokens(api.TokenPair{
		AccessToken:  a.cfg.AccessToken,
		RefreshToken: a.cfg.RefreshToken,
	})
	c.UseRequest(httpclient.TraceInterceptor(a.logger))
	return c
}

// stderrBusy is the terminal stand-in for the web UI's loading overlay.
type stderrBusy struct{}

func (s *stderrBusy) Show() { fmt.Fprint(os.Stderr, "working...\r") }
func (s *stderrBusy) Hide() { fmt.Fprint(os.Stderr, "\r\x1b[2K") }

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ops",
		Short: "OpsPanel CLI - REST and log stream client for the OpsPanel backend",
		Long: `OpsPanel CLI (ops) talks to an OpsPanel backend: CRUD operations on any
entity collection under the versioned API, and live job or consumer log
streaming over the backend's WebSocket endpoint.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	root.AddCommand(
		newGetCommand(a),
		newCreateCommand(a),
		newUpdateCommand(a),
		newPatchCommand(a),
		newDeleteCommand(a),
		newLogsCommand(a),
	)
	return root
}
