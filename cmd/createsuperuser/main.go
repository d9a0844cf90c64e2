// Command createsuperuser creates an admin actor, or promotes an existing
// one, so the first administrator can manage users and reference data.
package main

import (
	"fmt"
	"log"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/qs-lzh/yamdb/config"
	"github.com/qs-lzh/yamdb/internal/app"
	"github.com/qs-lzh/yamdb/internal/repository"
	"github.com/qs-lzh/yamdb/internal/util"
)

func main() {
	username := flag.StringP("username", "u", "", "username of the superuser")
	email := flag.StringP("email", "e", "", "email of the superuser")
	flag.Parse()

	if *username == "" || *email == "" {
		fmt.Fprintln(os.Stderr, "usage: createsuperuser --username NAME --email ADDRESS")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := util.NewLogger(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := repository.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}

	application, err := app.New(cfg, db, nil, nil, logger)
	if err != nil {
		logger.Fatal("Failed to create app", zap.Error(err))
	}
	defer application.Close()

	user, err := application.UserService.EnsureSuperuser(*username, *email)
	if err != nil {
		logger.Fatal("Failed to create superuser", zap.Error(err))
	}
	logger.Info("Superuser ready", zap.String("username", user.Username), zap.Uint("id", user.ID))
}
