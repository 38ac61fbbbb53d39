// controllers/srv.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"boardshare/app"
	"boardshare/db"
	"boardshare/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Srv struct {
	Repo      *db.Repo
	AppSess   *session.AppSessionStore
	WebOrigin string
	Cfg       app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:      db.NewRepo(a.DB),
		AppSess:   a.AppSessions(),
		WebOrigin: a.Config.WebOrigin,
		Cfg:       a.Config,
	}
}

// --- helpers ---

func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, sessionID, accountID, ip, ua string) error {
	_ = s.Repo.TouchAccountLogin(ctx, accountID, ip, ua) // telemetry only
	if err := s.AppSess.Create(ctx, sessionID, accountID); err != nil {
		return err
	}
	s.setAppCookie(w, sessionID, s.Cfg.SessionTTL)
	return nil
}

// currentActor reads the identity stashed by AuthRequired.
func currentActor(c *gin.Context) (db.Actor, bool) {
	v, ok := c.Get("accountID")
	if !ok {
		return db.Actor{}, false
	}
	id, _ := v.(string)
	if id == "" {
		return db.Actor{}, false
	}
	return db.Actor{ID: id, Username: c.GetString("username")}, true
}

func isAdmin(c *gin.Context) bool {
	v, ok := c.Get("isAdmin")
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// writeRepoError maps the repo error taxonomy onto HTTP statuses. Conflict
// and validation are kept apart so the UI can message them differently.
func writeRepoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
	case errors.Is(err, db.ErrConflict):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrValidation):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}
