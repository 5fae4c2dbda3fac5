package main

import (
	"context"
	"net/http"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marks-app/marks/internal/auth"
	"github.com/marks-app/marks/internal/config"
	"github.com/marks-app/marks/internal/db"
	"github.com/marks-app/marks/internal/feed"
	"github.com/marks-app/marks/internal/handler"
	"github.com/marks-app/marks/internal/logger"
	"github.com/marks-app/marks/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies)

			ctx := context.Background()
			oidcProvider, err := auth.NewProvider(ctx, cfg)
			if err != nil {
				return err
			}

			hub := feed.NewHub(log)
			userStore := store.NewUserStore(database)
			bookmarkStore := store.NewBookmarkStore(database, hub)
			tokenStore := auth.NewSQLTokenStore(database)

			// Optional: fan feed events out across instances via redis.
			if cfg.Redis.Addr != "" {
				redisClient := goredis.NewClient(&goredis.Options{
					Addr:     cfg.Redis.Addr,
					Password: cfg.Redis.Password,
					DB:       cfg.Redis.DB,
				})
				bridge := feed.NewRedisBridge(redisClient, hub, log)
				go bridge.Run(ctx)
				log.Info("redis feed bridge enabled", zap.String("addr", cfg.Redis.Addr))
			}

			authHandlers := auth.NewHandlers(oidcProvider, sessionManager, userStore, log, !cfg.InsecureCookies)
			authMiddleware := auth.NewMiddleware(sessionManager, userStore)
			apiAuth := auth.NewAPIAuthMiddleware(tokenStore, userStore, sessionManager)

			router := handler.NewRouter(handler.Deps{
				SessionManager: sessionManager,
				AuthHandlers:   authHandlers,
				AuthMiddleware: authMiddleware,
				APIAuth:        apiAuth,
				BookmarkStore:  bookmarkStore,
				Hub:            hub,
				Log:            log,
			})

			log.Info("listening", zap.String("addr", cfg.HTTP.Addr))
			return http.ListenAndServe(cfg.HTTP.Addr, router)
		},
	}
}
