// Package store abstracts trade and video persistence behind a single
// interface with three interchangeable backends: SQLite (via GORM), MongoDB
// and a flat JSON file. The backend is selected by configuration; the rest of
// the application never knows which one it is talking to.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/models"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// VideoFilter narrows a video listing. Zero value means no filtering.
type VideoFilter struct {
	Category string
	Featured bool
}

// Store is the persistence boundary for the journal.
//
// ListTrades returns trades in insertion (id) order; ListVideos returns
// newest first.
type Store interface {
	CreateTrade(ctx context.Context, t *models.Trade) error
	GetTrade(ctx context.Context, id uint) (*models.Trade, error)
	ListTrades(ctx context.Context) ([]models.Trade, error)
	ListTradesByStatus(ctx context.Context, status string) ([]models.Trade, error)
	UpdateTrade(ctx context.Context, t *models.Trade) error
	DeleteTrade(ctx context.Context, id uint) error

	CreateVideo(ctx context.Context, v *models.Video) error
	GetVideo(ctx context.Context, id uint) (*models.Video, error)
	ListVideos(ctx context.Context, filter VideoFilter) ([]models.Video, error)
	UpdateVideo(ctx context.Context, v *models.Video) error
	DeleteVideo(ctx context.Context, id uint) error

	Close() error
}

// Open creates the store selected by cfg.Driver.
func Open(cfg config.Database, log *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		log.Info("Using SQLite store", zap.String("dsn", cfg.DSN))
		return NewGormStore(cfg.DSN)
	case "mongo":
		log.Info("Using MongoDB store", zap.String("uri", cfg.MongoURI))
		return NewMongoStore(cfg.MongoURI)
	case "jsonfile":
		log.Info("Using JSON file store", zap.String("path", cfg.Path))
		return NewJSONFileStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
