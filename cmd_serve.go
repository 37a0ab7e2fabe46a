package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"money-dog-go-be/controller"
	"money-dog-go-be/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the companion HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := newServer(a)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Listening", zap.String("port", a.cfg.Port))
		errCh <- server.Listen(":" + a.cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.requestTimeout()+5*time.Second)
	defer cancel()
	return server.ShutdownWithContext(shutdownCtx)
}

func newServer(a *app) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName: "moneydog",
	})

	// Middleware
	server.Use(recover.New())
	server.Use(fiberlogger.New())
	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-User-ID",
		AllowMethods: "GET,POST,PUT,OPTIONS",
	}))

	// Routes
	api := server.Group("/api/v1")
	handlers.Register(api, &handlers.Handler{
		Registry: controller.NewRegistry(a.services.Factory()),
		Log:      a.log,
		Timeout:  a.requestTimeout(),
	})
	return server
}
