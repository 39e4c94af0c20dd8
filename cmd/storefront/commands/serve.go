package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/local_store/internal/assets"
	"github.com/Skotchmaster/local_store/internal/config"
	"github.com/Skotchmaster/local_store/internal/events"
	"github.com/Skotchmaster/local_store/internal/httpserver"
	"github.com/Skotchmaster/local_store/internal/service"
	"github.com/Skotchmaster/local_store/internal/session"
	"github.com/Skotchmaster/local_store/pkg/db"
	"github.com/Skotchmaster/local_store/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/local_store/pkg/middleware/logging"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := applyFlags(config.Load())
		if port != 0 {
			cfg.ServerPort = port
		}
		return serve(cfg)
	},
}

func init() {
	serveCmd.Flags().IntVar(&port, "port", 0, "listen port, overrides SERVER_PORT")
}

func serve(cfg *config.Config) error {
	log, ctx := newLogger(cfg)

	gdb, r, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			log.Error("db close", "error", err)
		}
	}()

	var (
		store session.Store = &session.GormStore{DB: gdb}
		rdb   *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb, err = session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("redis init: %w", err)
		}
		defer rdb.Close()
		store = &session.RedisStore{Client: rdb}
	}

	pub, err := events.New(cfg.EventsBroker, cfg.KafkaBrokers, cfg.AMQPURL, log)
	if err != nil {
		return fmt.Errorf("events init: %w", err)
	}
	defer func() {
		if err := pub.Close(); err != nil {
			log.Error("events close", "error", err)
		}
	}()

	images, err := assets.New(cfg.ImageBucket, cfg.AWSRegion, cfg.ImageURLTTL, cfg.AssetsBaseURL)
	if err != nil {
		return fmt.Errorf("assets init: %w", err)
	}

	authSvc := &service.AuthService{
		Repo:       r,
		Sessions:   store,
		Events:     pub,
		Secret:     cfg.SessionSecret,
		SessionTTL: cfg.SessionTTL,
		BcryptCost: cfg.BcryptCost,
	}

	e := echo.New()
	e.HideBanner = true

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(loggingmw.RequestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID, "X-CSRF-Token"},
	}))
	if cfg.CSRFEnabled {
		csrfCfg := csrf.DefaultConfig()
		csrfCfg.Secure = cfg.CookieSecure
		csrfCfg.TrustedOrigins = cfg.CORSOrigins
		e.Use(csrf.Middleware(csrfCfg))
	}

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	limiter := httpserver.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	go limiter.Run(bgCtx)
	if gs, ok := store.(*session.GormStore); ok {
		go purgeSessions(bgCtx, log, gs)
	}

	httpserver.Register(e, &httpserver.Deps{
		CartHandler: &httpserver.CartHTTP{
			Svc: &service.CartService{Repo: r, Events: pub, Images: images},
		},
		CheckoutHandler: &httpserver.CheckoutHTTP{
			Svc: &service.CheckoutService{Repo: r, Events: pub},
		},
		CatalogHandler: &httpserver.CatalogHTTP{
			Svc: &service.CatalogService{Repo: r, Images: images},
		},
		AuthHandler: &httpserver.AuthHTTP{Svc: authSvc, SecureCookie: cfg.CookieSecure},
		Sessions:    &httpserver.SessionAuth{Auth: authSvc},
		AuthLimiter: limiter,
		Ready: func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			if rdb != nil {
				return rdb.Ping(ctx).Err()
			}
			return nil
		},
		AssetsDir: cfg.AssetsDir,
	})

	addr := ":" + strconv.Itoa(cfg.ServerPort)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting storefront", "addr", addr, "events", cfg.EventsBroker, "redis", cfg.RedisAddr != "")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-errCh:
		return fmt.Errorf("echo start: %w", err)
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("echo shutdown", "error", err)
	}

	log.Info("server stopped")
	return nil
}

func purgeSessions(ctx context.Context, log *slog.Logger, s *session.GormStore) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				log.Warn("purge_sessions_error", "error", err)
				continue
			}
			if n > 0 {
				log.Info("expired sessions purged", "count", n)
			}
		}
	}
}
