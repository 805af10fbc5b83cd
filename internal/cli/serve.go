package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/sweet_shop/internal/config"
	"github.com/Skotchmaster/sweet_shop/internal/es"
	"github.com/Skotchmaster/sweet_shop/internal/handlers"
	"github.com/Skotchmaster/sweet_shop/internal/logging"
	authmw "github.com/Skotchmaster/sweet_shop/internal/middleware/auth"
	"github.com/Skotchmaster/sweet_shop/internal/middleware/csrf"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/mykafka"
	"github.com/Skotchmaster/sweet_shop/internal/notify"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/internal/service"
	httpserver "github.com/Skotchmaster/sweet_shop/internal/transport/http"
	"github.com/Skotchmaster/sweet_shop/pkg/db"
	"github.com/Skotchmaster/sweet_shop/pkg/tokens"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a.cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func openIndex(ctx context.Context, cfg config.Config) (*es.Index, error) {
	client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword})
	if err != nil {
		return nil, err
	}
	idx := &es.Index{Client: client, Name: cfg.ESIndex}
	if err := idx.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("ensure index %s: %w", cfg.ESIndex, err)
	}
	return idx, nil
}

func reindex(ctx context.Context, gdb *gorm.DB, idx service.SearchIndex) (int, error) {
	sweets, err := repo.New(gdb).AllSweets(ctx)
	if err != nil {
		return 0, err
	}
	for i := range sweets {
		if err := idx.Index(ctx, &sweets[i]); err != nil {
			return i, fmt.Errorf("index sweet %d: %w", sweets[i].ID, err)
		}
	}
	return len(sweets), nil
}

func serve(ctx context.Context, cfg config.Config, migrate bool) error {
	log := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(log)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			log.Error("db_close_error", "error", err)
		}
	}()
	if migrate {
		if err := models.Migrate(gdb); err != nil {
			return err
		}
	}
	r := repo.New(gdb)

	hub := notify.NewHub(cfg.NotifyBuffer)
	notifiers := []notify.Notifier{hub, notify.LogNotifier(log)}
	if len(cfg.KafkaBrokers) > 0 {
		prod := mykafka.NewProducer(cfg.KafkaBrokers)
		defer func() {
			if err := prod.Close(); err != nil {
				log.Error("kafka_close_error", "error", err)
			}
		}()
		notifiers = append(notifiers, &notify.KafkaNotifier{Publisher: prod, Topic: cfg.KafkaTopic})
	}
	events := notify.NewDispatcher(log, cfg.NotifyBuffer, notifiers...)

	catalog := &service.CatalogService{Repo: r, Events: events, Retry: db.DefaultRetryOptions()}
	if cfg.ESURL != "" {
		idx, err := openIndex(ctx, cfg)
		if err != nil {
			log.Warn("search_index_unavailable", "reason", "falling back to database search", "error", err)
		} else {
			catalog.Index = idx
		}
	}

	issuer := &tokens.Issuer{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}
	authSvc := &service.AuthService{Repo: r, Tokens: issuer, Events: events}
	cookies := authmw.Cookies{Secure: cfg.CookieSecure}

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = cfg.CookieSecure

	e := httpserver.New(log, &httpserver.Deps{
		Sweets:      &handlers.SweetHandler{Catalog: catalog},
		Auth:        &handlers.AuthHandler{Auth: authSvc, Cookies: cookies},
		Accounts:    &handlers.AccountHandler{Accounts: &service.AccountService{Repo: r, Events: events}},
		Feeds:       &handlers.FeedHandler{Hub: hub, AllowedOrigins: cfg.CORSOrigins},
		AuthMW:      &authmw.Middleware{Auth: authSvc, AccessSecret: issuer.AccessSecret, Cookies: cookies},
		CSRF:        csrfCfg,
		CORSOrigins: cfg.CORSOrigins,
		Ready: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	errCh := make(chan error, 1)
	go func() {
		log.Info("http_listen", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting_down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http_shutdown_error", "error", err)
	}
	if err := events.Close(shutdownCtx); err != nil {
		log.Error("notify_shutdown_error", "error", err)
	}
	log.Info("shutdown_complete")
	return nil
}
