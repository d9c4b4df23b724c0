package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	lottery "github.com/kydenul/lotto"
	"github.com/kydenul/lotto/console"
)

func main() {
	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	configPath := os.Getenv("LOTTO_CONFIG_FILE")
	configManager := lottery.NewConfigManager()
	if configPath != "" {
		configManager = lottery.NewConfigManagerWithFile(configPath)
	}

	config, err := configManager.LoadConfig()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	logOut, closeLog := openLog(config.Log)
	defer closeLog()
	logger := lottery.NewDefaultLogger(logOut, config.Log.Debug)
	configManager.SetLogger(logger)

	machine, err := lottery.NewLotteryMachineWithSchedule(config.Lottery.PrizeSchedule,
		append(config.Lottery.Options(), lottery.WithLogger(logger))...)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	serviceOpts := []lottery.ServiceOption{lottery.WithServiceLogger(logger)}
	if config.Journal.Enabled {
		redisClient := lottery.NewRedisClientFromConfig(config.Redis)
		defer redisClient.Close()

		journal := lottery.NewCircuitBreakerJournal(
			lottery.NewRedisDrawJournal(redisClient, config.Journal, logger), config.CircuitBreaker, logger)
		serviceOpts = append(serviceOpts,
			lottery.WithJournal(journal), lottery.WithJournalTimeout(config.Journal.Timeout))
		logger.Info("Draw journal enabled: redis=%s, key=%s", config.Redis.Addr, config.Journal.Key)
	}
	service := lottery.NewService(machine, serviceOpts...)

	if spec := config.Lottery.AutoDrawSchedule; spec != "" {
		scheduler, err := lottery.NewAutoDrawScheduler(service, spec, nil, logger)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// Only the prize schedule is reloaded; the machine keeps its balls and pot
	if configManager.ConfigFileUsed() != "" {
		configManager.WatchConfig(func(c *lottery.Config) {
			if err := machine.UpdatePrizeSchedule(c.Lottery.PrizeSchedule); err != nil {
				logger.Error("Failed to apply reloaded prize schedule: %v", err)
			}
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := console.New(service, os.Stdin, os.Stdout, console.WithLogger(logger)).Run(ctx); err != nil {
		logger.Error("Console stopped: %v", err)
	}
}

// openLog returns the log destination and a function closing it
func openLog(config *lottery.LogConfig) (io.Writer, func()) {
	if config == nil || config.File == "" {
		return os.Stderr, func() {}
	}

	f, err := os.OpenFile(config.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("Failed to open log file %s, logging to stderr: %v", config.File, err)
		return os.Stderr, func() {}
	}
	return f, func() { _ = f.Close() }
}
