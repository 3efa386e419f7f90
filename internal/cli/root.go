// Package cli defines the cobra commands of the yks client. Each command is
// the terminal counterpart of one app screen: it validates input, invokes
// the API client, and routes results through the session store.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	context_ "github.com/yks-app/yks-go/internal/infra/context"
	"github.com/yks-app/yks-go/internal/repo/token"
	"github.com/yks-app/yks-go/internal/svc/apiclient"
	"github.com/yks-app/yks-go/internal/svc/sessionsvc"
	"github.com/yks-app/yks-go/internal/svc/uploadsvc"
)

// App bundles the services the commands operate on.
type App struct {
	Session *sessionsvc.Service
	Client  *apiclient.Client
	Uploads *uploadsvc.UploadService
	Tokens  token.Repository
	Poll    sessionsvc.PollerConfig
}

//nolint:gochecknoglobals
var app *App

//nolint:gochecknoglobals,exhaustruct
var rootCmd = &cobra.Command{
	Use:           "yks",
	Short:         "Client for the yks community backend",
	Long:          "yks signs in to a community backend and manages the feed,\nprofile and societies from the terminal.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command against the given app. Called from main.
func Execute(ctx context.Context, a *App) error {
	app = a

	//nolint:wrapcheck
	return rootCmd.ExecuteContext(ctx)
}

//nolint:gochecknoinits
func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(forgotPasswordCmd)
	rootCmd.AddCommand(resetPasswordCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(societyCmd)
}

// restoreSession restores the persisted session and reports whether a user
// is signed in afterwards. On success the returned context carries the
// username, so log records of subsequent calls identify the session owner.
func restoreSession(ctx context.Context) (context.Context, bool) {
	app.Session.Bootstrap(ctx, app.Tokens, app.Client)

	if !app.Session.IsAuthenticated() {
		return ctx, false
	}

	if user := app.Session.User(); user != nil {
		ctx = context_.WithUsername(ctx, user.Username)
	}

	return ctx, true
}
