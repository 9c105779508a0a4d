package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"trading-journal-go/internal/database"
	"trading-journal-go/internal/models"
)

// GormStore is the relational backend, backed by SQLite through GORM.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore opens the SQLite database at dsn and migrates the schema.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := database.NewDatabase(dsn)
	if err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) CreateTrade(ctx context.Context, t *models.Trade) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	return nil
}

func (s *GormStore) GetTrade(ctx context.Context, id uint) (*models.Trade, error) {
	var t models.Trade
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get trade %d: %w", id, err)
	}
	return &t, nil
}

func (s *GormStore) ListTrades(ctx context.Context) ([]models.Trade, error) {
	var trades []models.Trade
	if err := s.db.WithContext(ctx).Order("id asc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, nil
}

func (s *GormStore) ListTradesByStatus(ctx context.Context, status string) ([]models.Trade, error) {
	var trades []models.Trade
	if err := s.db.WithContext(ctx).Where("status = ?", status).Order("id asc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s trades: %w", status, err)
	}
	return trades, nil
}

func (s *GormStore) UpdateTrade(ctx context.Context, t *models.Trade) error {
	// Save writes every column, so cleared pointer fields (a reopened trade's
	// exit_price) are persisted as NULL.
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return fmt.Errorf("failed to update trade %d: %w", t.ID, err)
	}
	return nil
}

func (s *GormStore) DeleteTrade(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Trade{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete trade %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateVideo(ctx context.Context, v *models.Video) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(v).Error; err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

func (s *GormStore) GetVideo(ctx context.Context, id uint) (*models.Video, error) {
	var v models.Video
	if err := s.db.WithContext(ctx).First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get video %d: %w", id, err)
	}
	return &v, nil
}

func (s *GormStore) ListVideos(ctx context.Context, filter VideoFilter) ([]models.Video, error) {
	query := s.db.WithContext(ctx).Model(&models.Video{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Featured {
		query = query.Where("is_featured = ?", true)
	}

	var videos []models.Video
	if err := query.Order("created_at desc").Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return videos, nil
}

func (s *GormStore) UpdateVideo(ctx context.Context, v *models.Video) error {
	if err := s.db.WithContext(ctx).Save(v).Error; err != nil {
		return fmt.Errorf("failed to update video %d: %w", v.ID, err)
	}
	return nil
}

func (s *GormStore) DeleteVideo(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Video{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete video %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
