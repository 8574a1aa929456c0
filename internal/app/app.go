// Package app wires configuration, stores, publishers and the HTTP router
// into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"api_sales/api"
	"api_sales/internal/config"
	"api_sales/internal/database"
	"api_sales/internal/events"
	"api_sales/internal/sales"
	"api_sales/internal/seed"
	"api_sales/internal/users"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App is a fully wired sales service.
type App struct {
	Router  *gin.Engine
	Service *sales.Service

	closers []io.Closer
	logger  *zap.Logger
}

// New builds the stores selected by cfg, loads fixtures and registers routes.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger}

	var remoteUsers sales.UserStore
	if cfg.Users.URL != "" {
		c := users.NewClient(cfg.Users.URL, cfg.Users.Timeout, logger)
		a.closers = append(a.closers, c)
		remoteUsers = c
	}

	var (
		stores     sales.Stores
		opts       []sales.Option
		userWriter seed.UserWriter
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		localUsers := sales.NewLocalUserStorage()
		stores = sales.Stores{
			Sales:    sales.NewLocalStorage(),
			Users:    localUsers,
			Products: sales.NewLocalProductStorage(),
		}
		userWriter = localUsers
		if remoteUsers != nil {
			stores.Users = remoteUsers
			userWriter = nil
		}
	default:
		db, err := database.Open(cfg.Database)
		if err != nil {
			a.Close()
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB)
		}
		stores = database.NewStores(db, remoteUsers)
		opts = append(opts, sales.WithTxManager(database.NewTxManagerGorm(db, remoteUsers)))
		if remoteUsers == nil {
			userWriter = database.NewUserGormRepository(db)
		}
	}

	if cfg.Seed.File != "" {
		if err := seed.LoadFile(ctx, cfg.Seed.File, userWriter, stores.Products, logger); err != nil {
			a.Close()
			return nil, err
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		p := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		a.closers = append(a.closers, p)
		opts = append(opts, sales.WithPublisher(p))
	}
	opts = append(opts, sales.WithStockRestore(cfg.Sales.RestoreStock))

	a.Service = sales.NewService(stores, logger, opts...)
	a.Router = api.NewRouter(a.Service, logger)

	logger.Info("sales service wired",
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("remote_users", remoteUsers != nil),
		zap.Bool("events", len(cfg.Kafka.Brokers) > 0),
		zap.Bool("restore_stock", cfg.Sales.RestoreStock),
	)
	return a, nil
}

// Close releases every resource opened by New, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close app: %w", err)
	}
	return nil
}
