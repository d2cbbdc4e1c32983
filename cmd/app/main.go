package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hivechat/internal"
	"hivechat/internal/entity"
	"hivechat/internal/input"
	"hivechat/internal/metrics"
	"hivechat/internal/nlog"
	"hivechat/internal/realtime"
	"hivechat/internal/repository"
	"hivechat/internal/service"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := internal.LoadConfig(".")
	if err != nil {
		fmt.Printf("Could not load configuration: %v\n", err)
		os.Exit(1)
	}

	appLogger, err := nlog.NewAppLogger(cfg.LogDirectory, cfg.EnableLogging)
	if err != nil {
		fmt.Printf("Could not set up logging: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.CloseAll()

	httpLogger, err := appLogger.RegisterSubsystem("http")
	if err != nil {
		fmt.Printf("Could not register logger: %v\n", err)
		os.Exit(1)
	}
	hubLogger, err := appLogger.RegisterSubsystem("hub")
	if err != nil {
		fmt.Printf("Could not register logger: %v\n", err)
		os.Exit(1)
	}
	serviceLogger, err := appLogger.RegisterSubsystem("service")
	if err != nil {
		fmt.Printf("Could not register logger: %v\n", err)
		os.Exit(1)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DBName), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Printf("Could not open database %s: %v\n", cfg.DBName, err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Channel{},
		&entity.ChannelMember{},
		&entity.Message{},
	); err != nil {
		fmt.Printf("Could not migrate database: %v\n", err)
		os.Exit(1)
	}

	userRepo := repository.NewSQLiteUserRepository(db)
	channelRepo := repository.NewSQLiteChannelRepository(db)
	membershipRepo := repository.NewSQLiteMembershipRepository(db)
	messageRepo := repository.NewSQLiteMessageRepository(db)

	m := metrics.New()
	presence := realtime.NewPresenceRegistry()
	typing := realtime.NewTypingCoordinator()
	hub := realtime.NewHub(presence, typing, m, hubLogger)

	userService := service.NewUserService(userRepo, serviceLogger)
	channelService := service.NewChannelService(channelRepo, membershipRepo, userRepo, hub, serviceLogger)
	messageService := service.NewMessageService(messageRepo, userRepo, channelService, hub, m, serviceLogger)

	inputManager := input.NewInputManager()
	inputManager.SetLogger(httpLogger)
	inputManager.SetServices(userService, channelService, messageService)
	inputManager.SetRealtime(hub, presence)
	inputManager.SetMetrics(m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go appLogger.Run(ctx)

	if err := inputManager.Run(ctx, &input.IptConfig{
		ServerPort:   cfg.ServerPort,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		SecretKey:    cfg.SecretKey,
	}); err != nil {
		fmt.Printf("Server error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Shutting off...\n")
}
