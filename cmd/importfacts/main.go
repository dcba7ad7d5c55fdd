package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"creature-training-system/logger"
	"creature-training-system/models"
	"creature-training-system/services"

	"github.com/joho/godotenv"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	_ = godotenv.Load()

	var file, driver, dsn string
	var migrate bool
	flag.StringVar(&file, "file", "", "path to the .xlsx workbook (sheets: Facts, Questions)")
	flag.StringVar(&driver, "driver", envOr("DB_DRIVER", "postgres"), "postgres or sqlite")
	flag.StringVar(&dsn, "dsn", "", "database DSN (defaults to DATABASE_URL or SQLITE_PATH)")
	flag.BoolVar(&migrate, "migrate", false, "run AutoMigrate before importing")
	flag.Parse()

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: importfacts -file facts.xlsx [-driver sqlite -dsn app.db] [-migrate]")
		os.Exit(2)
	}

	lg, err := logger.New(envOr("LOG_MODE", "dev"))
	if err != nil {
		log.Fatal("❌ failed to build logger: ", err)
	}
	defer lg.Sync()
	lg = lg.With("cmd", "importfacts", "file", file)
	if dsn == "" {
		if driver == "sqlite" {
			dsn = envOr("SQLITE_PATH", "app.db")
		} else {
			dsn = os.Getenv("DATABASE_URL")
		}
	}

	db, err := models.OpenDB(driver, dsn, gormlogger.Warn)
	if err != nil {
		lg.Fatal("failed to connect to database", "driver", driver, "error", err)
	}
	if migrate {
		if err := models.Migrate(db); err != nil {
			lg.Fatal("failed to migrate database", "error", err)
		}
	}

	f, err := os.Open(file)
	if err != nil {
		lg.Fatal("failed to open workbook", "error", err)
	}
	defer f.Close()

	res, err := services.ImportWorkbook(context.Background(), db, f)
	if err != nil {
		lg.Fatal("import failed", "error", err)
	}

	for _, e := range res.Errors {
		lg.Warn("[IMPORT] row skipped", "reason", e)
	}
	lg.Info("📥 [IMPORT] done",
		"facts_created", res.FactsCreated,
		"questions_created", res.QuestionsCreated,
		"skipped", res.Skipped,
		"row_errors", len(res.Errors),
	)
}

func envOr(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}
