package main

import (
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pageza/recipehub/backend/config"
	"github.com/pageza/recipehub/backend/internal/database"
	"github.com/pageza/recipehub/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Drop the audit tables instead of migrating")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if *rollback {
		if err := database.DropTables(db); err != nil {
			log.WithError(err).Fatal("failed to roll back")
		}
		fmt.Println("Successfully dropped the audit tables")
		return
	}

	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	fmt.Printf("Migrations applied to %s database\n", cfg.DBDriver)
}
