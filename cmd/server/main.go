package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"cutrackit/internal/adapters/auth"
	emailPkg "cutrackit/internal/adapters/email"
	web "cutrackit/internal/adapters/http"
	"cutrackit/internal/adapters/http/perf"
	"cutrackit/internal/adapters/storage"
	accountStore "cutrackit/internal/adapters/storage/account"
	courtStore "cutrackit/internal/adapters/storage/court"
	matchStore "cutrackit/internal/adapters/storage/match"
	profileStore "cutrackit/internal/adapters/storage/profile"
	sessionStore "cutrackit/internal/adapters/storage/session"
	teamStore "cutrackit/internal/adapters/storage/team"
	"cutrackit/internal/application/orchestrators"
	"cutrackit/internal/config"
	"cutrackit/internal/metrics"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_exit", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := new(slog.LevelVar)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	level.Set(cfg.Level())

	db, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		return err
	}

	// Performance instrumentation: every store goes through the timed DB.
	mgr := metrics.NewManager()
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector,
		storage.WithSlowQueryMs(cfg.SlowQueryMs),
		storage.WithQueryObserver(mgr),
	)

	stores := web.Stores{
		AccountStore: accountStore.NewSQLiteStore(timedDB),
		ProfileStore: profileStore.NewSQLiteStore(timedDB),
		CourtStore:   courtStore.NewSQLiteStore(timedDB),
		SessionStore: sessionStore.NewSQLiteStore(timedDB),
		TeamStore:    teamStore.NewSQLiteStore(timedDB),
		MatchStore:   matchStore.NewSQLiteStore(timedDB),
	}

	seedDeps := orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore, ProfileStore: stores.ProfileStore}
	if err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.SeedAdminInput{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}, seedDeps); err != nil {
		return err
	}
	if _, err := orchestrators.ExecuteSeedCourts(ctx, orchestrators.SeedCourtsInput{
		Names:    cfg.DefaultCourts,
		Capacity: cfg.DefaultCourtCapacity,
	}, orchestrators.SeedCourtsDeps{CourtStore: stores.CourtStore}); err != nil {
		return err
	}

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.ReplyTo)
		slog.Info("email_sender", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender", "provider", "noop", "msg", "CUTRACKIT_RESEND_KEY is not set, email delivery is disabled")
		} else {
			slog.Info("email_sender", "provider", "noop")
		}
	}

	secret, err := cfg.JWTSecretOrRandom()
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenIssuer(secret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	srv, err := web.NewServer(web.Config{
		Secure:             cfg.IsProduction(),
		CSRFKey:            csrfKey,
		TrustedOrigins:     cfg.TrustedOrigins,
		CookieTTL:          cfg.CookieTTL,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		SlowRequestMs:      cfg.SlowRequestMs,
		Location:           loc,
		SessionTimeout:     cfg.SessionTimeout,
	}, stores, web.Deps{
		Tokens:  tokens,
		Metrics: mgr,
		Perf:    collector,
		Sender:  sender,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	// Close court sessions nobody checked out of.
	sweeperDone := orchestrators.StartSessionSweeper(ctx, cfg.SweepInterval,
		orchestrators.ExpireSessionsInput{Timeout: cfg.SessionTimeout},
		orchestrators.ExpireSessionsDeps{SessionStore: stores.SessionStore, Metrics: mgr},
	)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start", "version", version, "addr", cfg.Addr, "env", cfg.Env, "schema", storage.LatestSchemaVersion())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	slog.Info("server_stop")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = httpServer.Shutdown(shutdownCtx)
	stop()
	<-sweeperDone
	return err
}
