package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"folio-backend/internal/app"
	"folio-backend/internal/config"
	"folio-backend/internal/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load: " + err.Error())
	}

	a, err := app.CreateApp(cfg)
	if err != nil {
		panic("app create: " + err.Error())
	}

	// Verify connections before printing startup logs.
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			panic("postgres: get DB: " + err.Error())
		}
		if err := sqlDB.Ping(); err != nil {
			panic("postgres connection failed: " + err.Error())
		}
		if err := database.AutoMigrate(a.DB); err != nil {
			panic("migrate: " + err.Error())
		}
		fmt.Println("Postgres connected")
	}
	if a.Rdb != nil {
		if err := a.Rdb.Ping(context.Background()).Err(); err != nil {
			panic("Redis connection failed: " + err.Error())
		}
		fmt.Println("Redis connected")
	}

	ctx := context.Background()
	if a.Refresher != nil {
		a.Refresher.Start(ctx)
	}
	if a.Evaluator != nil {
		a.Evaluator.Start(ctx)
	}

	fmt.Printf("Server running at http://localhost:%s\n", cfg.Port)
	fmt.Printf("Health check: http://localhost:%s/health/json\n", cfg.Port)
	fmt.Println("---")

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		if a.Refresher != nil {
			a.Refresher.Stop()
		}
		if a.Evaluator != nil {
			a.Evaluator.Stop()
		}
		_ = a.Fiber.Shutdown()
	}()

	if err := a.Fiber.Listen(":" + cfg.Port); err != nil {
		panic(err)
	}
}
