package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"boardshare/app"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AccountController struct{ *Srv }

func NewAccountController(s *Srv) *AccountController { return &AccountController{Srv: s} }

// Login finds or creates the account and issues a redis-backed session
// cookie. Real credential checks live in the identity layer in front of
// this service; here a username is the whole ceremony.
func (ac *AccountController) Login(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	a, err := ac.Repo.FindOrCreateAccount(c.Request.Context(), in.Username, uuid.NewString())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	sid := uuid.NewString()
	if err := ac.issueSession(c.Request.Context(), c.Writer, sid, a.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (ac *AccountController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = ac.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(ac.WebOrigin, "https://"),
	})
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (ac *AccountController) WhoAmI(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	a, err := ac.Repo.FindAccountByID(c.Request.Context(), actor.ID)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Admin listing with keyword search and pagination.
func (ac *AccountController) ListAccounts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	res, err := ac.Repo.ListAccounts(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ac *AccountController) GetAccount(c *gin.Context) {
	a, err := ac.Repo.FindAccountByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (ac *AccountController) DeleteAccount(c *gin.Context) {
	id := c.Param("id")
	if err := ac.Repo.DeleteAccountByID(c.Request.Context(), id); err != nil {
		writeRepoError(c, err)
		return
	}
	_ = ac.AppSess.RevokeAllForAccount(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
