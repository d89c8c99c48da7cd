package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/pageza/recipehub/backend/internal/adapter"
	"github.com/pageza/recipehub/backend/internal/client"
	"github.com/pageza/recipehub/backend/internal/logging"
	"github.com/pageza/recipehub/backend/internal/refresh"
	"github.com/pageza/recipehub/backend/internal/service"
	"github.com/pageza/recipehub/backend/internal/types"
)

// Config keys. Each is also read from RECIPECTL_<KEY>.
const (
	keyExternalURL = "external_url"
	keyBackendURL  = "backend_url"
	keyTimeout     = "timeout"
	keyEmail       = "email"
	keyPassword    = "password"
	keyInterval    = "interval"
	keyJSON        = "json"
	keyLogLevel    = "log_level"
	keyRewriteFrom = "image_rewrite_from"
	keyRewriteTo   = "image_rewrite_to"
)

// app holds the services one invocation works with
type app struct {
	v   *viper.Viper
	out io.Writer
	log *logrus.Logger

	backend     *client.BackendClient
	aggregation *service.AggregationService
	moderation  *service.ModerationService
	recipes     *service.RecipeService
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("RECIPECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyExternalURL, "https://dummyjson.com")
	v.SetDefault(keyBackendURL, "http://localhost")
	v.SetDefault(keyTimeout, client.DefaultTimeout)
	v.SetDefault(keyInterval, refresh.DefaultInterval)
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyRewriteFrom, adapter.DefaultRewrite.From)
	v.SetDefault(keyRewriteTo, adapter.DefaultRewrite.To)

	a := &app{v: v}

	root := &cobra.Command{
		Use:   "recipectl",
		Short: "Browse recipes and moderate user submissions",
		Long: `recipectl talks to the public recipe API and the recipe backend directly.

Commands that act on behalf of a user log in with --email and --password
(or RECIPECTL_EMAIL / RECIPECTL_PASSWORD). Moderation needs an admin account.

Examples:
  recipectl list                      # Recipes visible to a guest
  recipectl search pasta              # Search the public recipe API
  recipectl pending --watch           # Follow the review queue
  recipectl approve 12 15             # Approve two pending recipes
  recipectl mine --json               # Your own recipes with their status`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("external-url", v.GetString(keyExternalURL), "Base URL of the public recipe API")
	flags.String("backend-url", v.GetString(keyBackendURL), "Base URL of the recipe backend")
	flags.Duration("timeout", v.GetDuration(keyTimeout), "Per-request timeout")
	flags.String("email", "", "Account email")
	flags.String("password", "", "Account password")
	flags.Bool("json", false, "Output in JSON format")
	flags.String("log-level", v.GetString(keyLogLevel), "Log level (debug, info, warn, error)")
	for _, name := range []string{"external-url", "backend-url", "timeout", "email", "password", "json", "log-level"} {
		_ = v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}

	root.AddCommand(
		a.listCmd(),
		a.searchCmd(),
		a.luckyCmd(),
		a.mineCmd(),
		a.pendingCmd(),
		a.moderateCmd(types.ActionApprove),
		a.moderateCmd(types.ActionDecline),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	a.log = logging.NewWithOutput(cmd.ErrOrStderr(), a.v.GetString(keyLogLevel), "text")

	timeout := a.v.GetDuration(keyTimeout)
	if timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	external := client.NewExternalClient(client.Options{
		BaseURL:      a.v.GetString(keyExternalURL),
		Timeout:      timeout,
		MaxRetryTime: 5 * time.Second,
		Limiter:      rate.NewLimiter(rate.Limit(10), 5),
		Logger:       a.log,
	})
	a.backend = client.NewBackendClient(client.Options{
		BaseURL:      a.v.GetString(keyBackendURL),
		Timeout:      timeout,
		MaxRetryTime: 5 * time.Second,
		Logger:       a.log,
	})

	ad := adapter.New(adapter.HostRewrite{From: a.v.GetString(keyRewriteFrom), To: a.v.GetString(keyRewriteTo)})
	a.aggregation = service.NewAggregationService(external, a.backend, ad, nil, a.log)
	a.moderation = service.NewModerationService(a.backend, ad, nil, nil, a.log, timeout)
	a.recipes = service.NewRecipeService(a.backend, ad, nil, a.log)
	return nil
}

// caller logs in when credentials are configured and returns Guest otherwise
func (a *app) caller(ctx context.Context) (types.Caller, error) {
	email, password := a.v.GetString(keyEmail), a.v.GetString(keyPassword)
	if email == "" {
		return types.Guest, nil
	}
	user, err := a.backend.Login(ctx, email, password)
	if err != nil {
		return types.Guest, fmt.Errorf("failed to log in as %s: %w", email, err)
	}
	role := user.Role
	if role != types.RoleAdmin {
		role = types.RoleUser
	}
	return types.Caller{UserID: user.UserID, Name: user.Name, Role: role}, nil
}

// watch runs fn once, or on the refresh interval until interrupted
func (a *app) watch(cmd *cobra.Command, enabled bool, fn refresh.Func) error {
	if !enabled {
		return fn(cmd.Context())
	}
	p := refresh.NewPoller(a.v.GetDuration(keyInterval), fn, a.log)
	if err := p.Run(cmd.Context()); err != nil && cmd.Context().Err() == nil {
		return err
	}
	return nil
}
