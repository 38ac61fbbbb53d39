package app

import (
	"context"
	"log"

	"boardshare/db"

	"github.com/google/uuid"
)

// BootstrapFirstAdmin seeds the account named in BOOTSTRAP_EMAIL as an
// admin so a fresh deployment has someone who can manage accounts.
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo) {
	if cfg.BootstrapEmail == "" {
		return
	}
	a, err := repo.FindOrCreateAccount(ctx, cfg.BootstrapEmail, uuid.NewString())
	if err != nil {
		log.Printf("bootstrap admin failed: %v", err)
		return
	}
	if a.IsAdmin {
		return
	}
	a.IsAdmin = true
	if err := repo.DB.WithContext(ctx).Save(a).Error; err != nil {
		log.Printf("bootstrap admin failed: %v", err)
		return
	}
	log.Printf("[BOOTSTRAP] promoted %s to admin", a.Username)
}
