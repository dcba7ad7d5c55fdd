package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creature-training-system/config"
	"creature-training-system/handlers"
	"creature-training-system/logger"
	"creature-training-system/middleware"
	"creature-training-system/models"
	"creature-training-system/services"
	"creature-training-system/utils"
	"creature-training-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ invalid configuration: ", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal("❌ failed to build logger: ", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DatabaseURL
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}
	gormLevel := gormlogger.Warn
	if cfg.LogMode == "dev" {
		gormLevel = gormlogger.Info
	}
	db, err := models.OpenDB(cfg.DBDriver, dsn, gormLevel)
	if err != nil {
		lg.Fatal("failed to connect to database", "driver", cfg.DBDriver, "error", err)
	}
	if err := models.Migrate(db); err != nil {
		lg.Fatal("failed to migrate database", "error", err)
	}

	if seeded, err := services.SeedContent(ctx, db); err != nil {
		lg.Fatal("failed to seed content", "error", err)
	} else if seeded {
		lg.Info("🌱 seeded starter content")
	}

	store := services.NewGormStore(db)

	var locker services.UserLocker = services.NewLocalLocker(cfg.LockWait)
	if cfg.RedisAddr != "" {
		rl, err := services.NewRedisLocker(lg, cfg.RedisAddr, cfg.UserLockTTL, cfg.LockWait)
		if err != nil {
			lg.Fatal("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		}
		defer rl.Close()
		locker = rl
		lg.Info("🔒 per-user locks backed by redis", "addr", cfg.RedisAddr)
	}

	var icons services.IconStore
	if cfg.R2Enabled() {
		r2, err := utils.NewR2Uploader(ctx, utils.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2Bucket,
			CDNBaseURL:      cfg.CDNBaseURL,
		})
		if err != nil {
			lg.Fatal("failed to initialize R2 client", "error", err)
		}
		icons = r2
	} else {
		local, err := utils.NewLocalUploader("uploads", "/uploads")
		if err != nil {
			lg.Fatal("failed to ensure upload dir", "error", err)
		}
		icons = local
	}

	achievementService := services.NewAchievementService(store, lg)
	if err := achievementService.Seed(ctx); err != nil {
		lg.Fatal("failed to seed achievements", "error", err)
	}
	teamService := services.NewTeamService(store, locker, lg)
	learningService := services.NewLearningService(store, locker, teamService, achievementService, services.LearningConfig{
		FlashcardSeedCount: cfg.FlashcardSeedCount,
		QuizQuestionCount:  cfg.QuizQuestionCount,
		StreakPolicy:       services.StreakPolicy(cfg.StreakPolicy),
		Location:           cfg.Location(),
	}, lg)
	shopService := services.NewShopService(store, locker, icons, lg)
	leaderboardService := services.NewLeaderboardService(store, cfg.LeaderboardLimit)
	factService := services.NewFactService(store, cfg.Location(), lg)

	dailyFact := workers.NewDailyFactWorker(factService, cfg.DailyFactCron, cfg.Location(), lg)
	if err := dailyFact.Start(ctx); err != nil {
		lg.Fatal("failed to start daily fact worker", "error", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // icons only
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(lg))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-Username, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	handlers.Register(app, handlers.Deps{
		Learning:     learningService,
		Teams:        teamService,
		Achievements: achievementService,
		Shop:         shopService,
		Leaderboard:  leaderboardService,
		Facts:        factService,
		Log:          lg,
		GatewayToken: cfg.GatewayToken,
		DemoMode:     cfg.DemoMode,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})
	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Error("server error", "error", err)
			stop()
		}
	}()

	lg.Info("✅ Server running", "port", cfg.Port, "db", cfg.DBDriver, "streak_policy", cfg.StreakPolicy, "demo_mode", cfg.DemoMode)
	lg.Info("✅ CORS configured", "origins", cfg.AllowedOrigins)

	<-ctx.Done()
	lg.Info("Shutting down server...")

	if err := dailyFact.Stop(); err != nil {
		lg.Warn("daily fact worker shutdown", "error", err)
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		lg.Warn("server shutdown", "error", err)
	}
}
