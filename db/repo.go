package db

import (
	"boardshare/models"
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Actor identifies who performed a mutation, for audit stamping. Filled by
// the HTTP layer from the authenticated session.
type Actor struct {
	ID       string
	Username string
}

// lockForUpdate adds a FOR UPDATE row lock on Postgres. The sqlite test
// database runs on a single connection and serializes writers itself, and
// rejects the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Accounts

func (r *Repo) TouchAccountLogin(ctx context.Context, accountID, ip, ua string) error {
	now := time.Now().UTC()
	return r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"last_login_at": now,
			"last_seen_at":  now,
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
			"last_login_ip": ip,
			"last_login_ua": ua,
		}).Error
}

func (r *Repo) TouchAccountSeen(ctx context.Context, accountID string) error {
	return r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("last_seen_at", time.Now().UTC()).Error
}

func (r *Repo) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	var a models.Account
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) FindAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	var a models.Account
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) FindOrCreateAccount(ctx context.Context, username string, newID string) (*models.Account, error) {
	var a models.Account
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		a = models.Account{ID: newID, Username: username, DisplayName: username}
		if err := r.DB.WithContext(ctx).Create(&a).Error; err != nil {
			return nil, err
		}
		return &a, nil
	}
	return &a, err
}

// Paged listing with keyword matching on username/display name.
type ListAccountsResult struct {
	Accounts []models.Account `json:"accounts"`
	Total    int64            `json:"total"`
}

func (r *Repo) ListAccounts(ctx context.Context, q string, page, size int) (ListAccountsResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Account{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListAccountsResult{}, err
	}

	var accounts []models.Account
	if err := tx.
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&accounts).Error; err != nil {
		return ListAccountsResult{}, err
	}
	return ListAccountsResult{Accounts: accounts, Total: total}, nil
}

func (r *Repo) DeleteAccountByID(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Delete(&models.Account{ID: id}).Error
}
