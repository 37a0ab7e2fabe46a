package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"money-dog-go-be/companion"
	"money-dog-go-be/config"
	"money-dog-go-be/controller"
	"money-dog-go-be/database"
	"money-dog-go-be/events"
	"money-dog-go-be/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "moneydog",
	Short: "Money the dog, a savings companion",
	Long: `Money is a talking dog who helps you save toward your dreams.
Run "serve" for the HTTP API or "chat" to talk to Money in the terminal.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, chatCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is everything the subcommands share.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	services controller.Services
	closers  []func() error
}

// bootstrap loads configuration and wires the model provider, the optional
// database and the goal event notifiers.
func bootstrap() (*app, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.LogDevelopment, logger.LogLevel(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log := logger.Get()
	if envErr != nil {
		log.Debug("No .env file loaded", zap.Error(envErr))
	}

	a := &app{cfg: cfg, log: log}

	provider, err := companion.NewProvider(cfg.LLMProvider, cfg.APIKey(), cfg.Model, cfg.Temperature)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey() == "" {
		log.Warn("No API key configured, Money will not be able to answer", zap.String("provider", cfg.LLMProvider))
	}

	var store controller.Store
	if cfg.DatabaseURL != "" {
		db, err := database.ConnectDB(cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		store = database.NewStore(db)
	} else {
		log.Info("DATABASE_URL not set, keeping records in memory")
	}

	notifier := events.Fanout{events.LogNotifier{Log: log}}
	if cfg.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, publisher.Close)
		notifier = append(notifier, publisher)
		log.Info("Publishing goal events", zap.String("exchange", cfg.AMQPExchange))
	}

	a.services = controller.Services{
		Chat:      provider,
		Commenter: companion.NewDiaryCommenter(provider, log),
		Store:     store,
		Notifier:  notifier,
		Log:       log,
	}
	log.Info("Money is awake",
		zap.String("provider", cfg.LLMProvider),
		zap.String("model", cfg.Model),
		zap.Bool("persistent", store != nil),
	)
	return a, nil
}

func (a *app) requestTimeout() time.Duration {
	return time.Duration(a.cfg.RequestTimeout) * time.Second
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("Failed to close resource", zap.Error(err))
		}
	}
	_ = logger.Sync()
}
