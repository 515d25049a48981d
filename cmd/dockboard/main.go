package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"dockboard/frontend/board"
	"dockboard/frontend/login"
	"dockboard/infrastructure/audit"
	"dockboard/infrastructure/cache"
	"dockboard/infrastructure/config"
	httpserver "dockboard/infrastructure/http"
	"dockboard/infrastructure/hub"
	"dockboard/infrastructure/rbac"
	"dockboard/infrastructure/sqlite"
)

// SessionSweepInterval is how often expired sessions are purged.
const SessionSweepInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load("", os.Getenv)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sqlite.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	created, err := login.EnsureUser(ctx, db, cfg.Admin.Email, cfg.Admin.FullName, rbac.RoleAdmin, cfg.Admin.Password)
	if err != nil {
		log.Fatalf("ensure admin: %v", err)
	}
	if created {
		slog.Warn("created bootstrap admin; change its password", slog.String("email", cfg.Admin.Email))
	}

	boardOpts := board.Options{Lanes: cfg.Lanes, DefaultTimeSlot: cfg.DefaultTimeSlot}
	liveHub := hub.New(board.ScanSlot(db, boardOpts), cfg.ScanDebounce.Std())
	defer liveHub.Close()

	sessionCache := cache.NewUserSessionCache()
	userCache := cache.NewUserCache()
	rbacCache := cache.NewRbacRolesCache()
	rbacSvc := rbac.New(rbacCache)
	auditSvc := audit.NewService()

	server := httpserver.NewServer(cfg.Addr, db, sessionCache, userCache, rbacSvc, rbacCache, auditSvc, liveHub, httpserver.Options{
		Board: boardOpts,
		Login: login.Options{TTL: cfg.SessionTTL.Std(), SecureCookies: cfg.SecureCookies},
	})
	if err := server.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}
	slog.Info("dockboard listening", slog.String("addr", cfg.Addr), slog.Any("lanes", cfg.Lanes))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sweepSessions(gctx, db, sessionCache)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return server.Stop()
	})
	if err := g.Wait(); err != nil {
		slog.Error("graceful shutdown error", slog.Any("err", err))
	}
	slog.Info("dockboard stopped")
}

func sweepSessions(ctx context.Context, db *sqlite.DB, sessionCache *cache.UserSessionCache) {
	ticker := time.NewTicker(SessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sessionCache.DeleteExpired(now)
			n, err := login.DeleteExpiredSessions(ctx, db, now)
			if err != nil {
				slog.Error("session sweep failed", slog.Any("err", err))
				continue
			}
			if n > 0 {
				slog.Info("expired sessions removed", slog.Int("count", n))
			}
		}
	}
}
