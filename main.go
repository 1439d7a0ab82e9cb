package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "blogapi/internal/config"
	intdb "blogapi/internal/db"
	router "blogapi/internal/http"
	"blogapi/internal/mapping"
	"blogapi/internal/migrations"
	"blogapi/internal/repositories"
	"blogapi/internal/resources"
	"blogapi/internal/services"
	"blogapi/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		utils.InitLogger("info").Fatal("failed to load configuration", zap.Error(err))
	}
	log := utils.InitLogger(env.Log.Level)
	defer utils.Sync()
	log.Info("configuration loaded", zap.String("file", env.Source), zap.String("driver", env.Database.Driver))

	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	if env.Database.Migrate {
		if err := migrations.Run(env.Database.Driver, env.Database.DSN); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	db, err := intconfig.ConnectDB(context.Background(), env.Database)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()
	log.Info("database connected", zap.String("driver", env.Database.Driver))

	if env.Database.SeedFile != "" {
		if err := seed(db, env.Database.SeedFile); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	}

	mappings, err := mapping.NewRegistry(resources.PostMapping())
	if err != nil {
		log.Fatal("failed to build property mappings", zap.Error(err))
	}

	r := router.NewRouter(router.Deps{
		Env:      env,
		DB:       db,
		Mappings: mappings,
		Auth: services.AuthService{
			Secret:            []byte(env.Auth.JWTSecret),
			TTL:               time.Duration(env.Auth.TokenTTLMinutes) * time.Minute,
			AdminUsername:     env.Auth.AdminUsername,
			AdminPasswordHash: env.Auth.AdminPasswordHash,
		},
	})
	if env.Auth.JWTSecret == "" {
		log.Warn("auth.jwt_secret is empty, write routes are disabled")
	}

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
		return
	}

	log.Info("server stopped")
}

func seed(db *sql.DB, path string) error {
	data, err := intdb.LoadSeedFile(path)
	if err != nil {
		return err
	}
	_, err = intdb.Seed(context.Background(), repositories.PostRepository{DB: db}, data, time.Now())
	return err
}
