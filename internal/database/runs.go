package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"woosync/internal/models"
)

var ErrRunNotFound = errors.New("sync run not found")

// RunRepository stores the history of batch sync runs.
type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun inserts the run together with its per-product results.
func (r *RunRepository) SaveRun(ctx context.Context, run *models.SyncRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to save sync run: %w", err)
	}
	return nil
}

// GetRun loads a run with its results in input order.
func (r *RunRepository) GetRun(ctx context.Context, id string) (*models.SyncRun, error) {
	var run models.SyncRun
	err := r.db.WithContext(ctx).
		Preload("Results", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&run, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to fetch sync run: %w", err)
	}
	return &run, nil
}

// ListRuns returns runs newest first without their results.
func (r *RunRepository) ListRuns(ctx context.Context, limit, offset int) ([]models.SyncRun, int64, error) {
	var runs []models.SyncRun
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.SyncRun{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sync runs: %w", err)
	}

	if err := db.Order("started_at DESC").Offset(offset).Limit(limit).Find(&runs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch sync runs: %w", err)
	}
	return runs, total, nil
}
