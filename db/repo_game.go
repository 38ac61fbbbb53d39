package db

import (
	"boardshare/models"
	"context"
	"time"

	"gorm.io/gorm"
)

// Games

func (r *Repo) CreateGame(ctx context.Context, g *models.Game) error {
	return r.DB.WithContext(ctx).Create(g).Error
}

func (r *Repo) FindGameByID(ctx context.Context, id string) (*models.Game, error) {
	var g models.Game
	if err := r.DB.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Repo) ListGames(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&games).Error
	return games, err
}

// Game instances

func (r *Repo) CreateGameInstance(ctx context.Context, gi *models.GameInstance) error {
	var g models.Game
	if err := r.DB.WithContext(ctx).First(&g, "id = ?", gi.GameID).Error; err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Create(gi).Error
}

func (r *Repo) FindGameInstanceByID(ctx context.Context, id string) (*models.GameInstance, error) {
	var gi models.GameInstance
	if err := r.DB.WithContext(ctx).First(&gi, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &gi, nil
}

func (r *Repo) ListGameInstances(ctx context.Context, gameID string) ([]models.GameInstance, error) {
	var instances []models.GameInstance
	err := r.DB.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("created_at DESC").
		Find(&instances).Error
	return instances, err
}

// instanceFreeForPeriod is the single availability predicate behind both
// admission and approval: a copy is free for [start, end) when no APPROVED
// borrow request and no open lending record overlaps it. Two intervals
// [s1,e1) and [s2,e2) overlap iff s1 < e2 AND s2 < e1. PENDING and DECLINED
// requests never block.
func (r *Repo) instanceFreeForPeriod(tx *gorm.DB, instanceID string, start, end time.Time, excludeRequestID string) (bool, error) {
	q := tx.Model(&models.BorrowRequest{}).
		Where("game_instance_id = ? AND status = ? AND start_date < ? AND end_date > ?",
			instanceID, models.RequestApproved, end, start)
	if excludeRequestID != "" {
		q = q.Where("id <> ?", excludeRequestID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	if err := tx.Model(&models.LendingRecord{}).
		Where("game_instance_id = ? AND status IN ? AND start_date < ? AND end_date > ?",
			instanceID,
			[]models.LendingStatus{models.LendingActive, models.LendingOverdue},
			end, start).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n == 0, nil
}

// InstanceFreeForPeriod answers "could a request for this copy and interval
// be admitted right now". Read-only; the authoritative check re-runs under
// a row lock inside the admission transaction.
func (r *Repo) InstanceFreeForPeriod(ctx context.Context, instanceID string, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, ErrInvalidPeriod
	}
	return r.instanceFreeForPeriod(r.DB.WithContext(ctx), instanceID, start, end, "")
}

// IsInstanceAvailable reports the copy's procedural availability flag.
func (r *Repo) IsInstanceAvailable(ctx context.Context, instanceID string) (bool, error) {
	var available bool
	if err := r.DB.WithContext(ctx).
		Model(&models.GameInstance{}).
		Select("available").
		Where("id = ?", instanceID).
		Scan(&available).Error; err != nil {
		return false, err
	}
	return available, nil
}
