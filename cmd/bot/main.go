package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"household_reminder_bot/internal/app"
	"household_reminder_bot/internal/infra/config"
	idb "household_reminder_bot/internal/infra/database"
	"household_reminder_bot/internal/infra/logger"
	inotify "household_reminder_bot/internal/infra/notify"
	"household_reminder_bot/internal/infra/scheduler"
	"household_reminder_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get().WithField("component", "main")
	log.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Household reminder bot starting")

	// Database and repositories.
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	log.Info("Database connection established")

	taskRepo := idb.NewPostgresTaskRepository(db)
	billRepo := idb.NewPostgresBillRepository(db)
	maintRepo := idb.NewPostgresMaintenanceRepository(db)
	prefRepo := idb.NewPostgresPreferenceRepository(db)

	// Telegram delivery is optional: without a token the gateway reports
	// unavailable and the engine degrades to plain CRUD.
	var bot *telebot.Bot
	if cfg.TelegramToken != "" {
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				logger.Get().WithError(err).Error("Telebot error")
			},
		})
		if err != nil {
			log.WithError(err).Fatal("Could not create Telegram bot")
		}
	} else {
		log.Warn("TELEGRAM_TOKEN not set, reminders will not be delivered")
	}

	gateway := inotify.NewTelegramGateway(bot, cfg.NotifyChatID, logger.Get().WithField("component", "gateway"))
	defer gateway.Stop()

	// Engine: scheduler + one coordinator per domain.
	reminderScheduler := app.NewReminderScheduler(gateway, logger.Get().WithField("component", "scheduler"))
	taskCoord := app.NewTaskCoordinator(taskRepo, prefRepo, reminderScheduler, logger.Get().WithField("component", "tasks"))
	billCoord := app.NewBillCoordinator(billRepo, prefRepo, reminderScheduler, logger.Get().WithField("component", "bills"))
	maintCoord := app.NewMaintenanceCoordinator(maintRepo, prefRepo, reminderScheduler, logger.Get().WithField("component", "maintenance"))

	refresher := scheduler.NewReminderRefresher(
		map[string]scheduler.ReminderSource{
			"tasks":       taskCoord,
			"bills":       billCoord,
			"maintenance": maintCoord,
		},
		billCoord,
		logger.Get().WithField("component", "refresher"),
		cfg.CronSpecRefresh,
		cfg.CronSpecRollover,
	)
	if err := refresher.Start(); err != nil {
		log.WithError(err).Fatal("Could not start reminder refresher")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if bot != nil {
		telegram.RegisterBotCommands(ctx, bot, gateway, taskCoord, billCoord, maintCoord, logger.Get().WithField("component", "telegram"))
		go bot.Start()
		log.Info("Telegram bot started")
	}

	log.Info("Application setup complete")

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	cancel()
	refresher.Stop()
	if bot != nil {
		bot.Stop()
	}
	log.Info("Application shut down gracefully")
}
