package main

import (
	"context"
	"flag"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-gin-rbac-posts/internal/core/config"
	"go-gin-rbac-posts/internal/core/database"
	"go-gin-rbac-posts/internal/core/logger"
	"go-gin-rbac-posts/internal/repo"
	"go-gin-rbac-posts/internal/seed"
)

func main() {
	posts := flag.Bool("posts", false, "seed demo posts")
	noAdmin := flag.Bool("no-admin", false, "skip the bootstrap admin account")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := repo.Migrate(db); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	opt := seed.Options{Posts: *posts}
	if !*noAdmin {
		a := cfg.Seed.Admin
		opt.Admin = &seed.Admin{Name: a.Name, Email: a.Email, Phone: a.Phone, Password: a.Password}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := seed.Run(ctx, db, log, opt); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
}
