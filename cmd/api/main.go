// Command api runs the Cash4Edu client core: a local companion API over the
// profile session, plus one-shot profile and logout commands.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "cash4edu/docs"
	"cash4edu/internal/handler"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	Version = "0.1.0"
	appName = "cash4edu"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Cash4Edu client core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(&configPath, &logLevel),
		profileCmd(&configPath, &logLevel),
		logoutCmd(&configPath, &logLevel),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

func serveCmd(configPath, logLevel *string) *cobra.Command {
	var swagger bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the profile session and the companion API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath, *logLevel, nil)
			if err != nil {
				return err
			}
			defer a.close()
			return serve(ctx, a, swagger)
		},
	}
	cmd.Flags().BoolVar(&swagger, "swagger", true, "Serve the API docs at /swagger/index.html")
	return cmd
}

func serve(ctx context.Context, a *app, swagger bool) error {
	if a.cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handler.New(handler.Deps{
		Accounts:   a.accounts,
		Profiles:   a.session,
		Onboarding: a.flow,
		Perks:      a.client,
		Toasts:     a.hub,
		Logger:     a.logger.Named("handler"),
	})
	router := handler.NewRouter(h, handler.RouterConfig{
		Guard:         a.guard,
		ClientKey:     a.cfg.Server.ClientKey,
		RatePerSecond: a.cfg.Server.RatePerSecond,
		RateBurst:     a.cfg.Server.RateBurst,
		Gatherer:      a.registry,
		Swagger:       swagger,
	})
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := a.session.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		a.logger.Info("serve(): companion API listening", zap.String("addr", srv.Addr), zap.String("version", Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve(): %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.logger.Info("serve(): shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func profileCmd(configPath, logLevel *string) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the signed-in student's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, *configPath, *logLevel, stderrToasts{w: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(ctx, a.cfg.API.Timeout+5*time.Second)
			defer cancel()
			p, err := a.session.RefreshUserProfile(ctx, force)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
	cmd.Flags().BoolVar(&force, "force", true, "Bypass the profile cache")
	return cmd
}

func logoutCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), *configPath, *logLevel, stderrToasts{w: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.close()
			a.accounts.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}
