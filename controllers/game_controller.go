package controllers

import (
	"net/http"
	"time"

	"boardshare/app"
	"boardshare/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GameController struct{ *Srv }

func NewGameController(s *Srv) *GameController { return &GameController{Srv: s} }

func (gc *GameController) CreateGame(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	var in struct {
		Name       string `json:"name" binding:"required"`
		MinPlayers int    `json:"minPlayers"`
		MaxPlayers int    `json:"maxPlayers"`
		Category   string `json:"category"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.MinPlayers <= 0 {
		in.MinPlayers = 1
	}
	if in.MaxPlayers < in.MinPlayers {
		in.MaxPlayers = in.MinPlayers
	}
	g := &models.Game{
		ID:         uuid.NewString(),
		Name:       in.Name,
		MinPlayers: in.MinPlayers,
		MaxPlayers: in.MaxPlayers,
		Category:   in.Category,
		OwnerID:    actor.ID,
	}
	if err := gc.Repo.CreateGame(c.Request.Context(), g); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (gc *GameController) ListGames(c *gin.Context) {
	games, err := gc.Repo.ListGames(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"games": games})
}

func (gc *GameController) GetGame(c *gin.Context) {
	g, err := gc.Repo.FindGameByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// CreateInstance registers a physical copy of a game owned by the caller.
func (gc *GameController) CreateInstance(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	var in struct {
		Condition   string     `json:"condition"`
		Location    string     `json:"location"`
		DisplayName string     `json:"displayName"`
		AcquiredAt  *time.Time `json:"acquiredAt"`
	}
	_ = c.ShouldBindJSON(&in)

	gi := &models.GameInstance{
		ID:          uuid.NewString(),
		GameID:      c.Param("id"),
		OwnerID:     actor.ID,
		Available:   true,
		Condition:   in.Condition,
		Location:    in.Location,
		DisplayName: in.DisplayName,
		AcquiredAt:  in.AcquiredAt,
	}
	if err := gc.Repo.CreateGameInstance(c.Request.Context(), gi); err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gi)
}

func (gc *GameController) ListInstances(c *gin.Context) {
	instances, err := gc.Repo.ListGameInstances(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"instances": instances})
}

// CheckAvailability answers whether a copy is free for [start, end).
func (gc *GameController) CheckAvailability(c *gin.Context) {
	start, err1 := time.Parse(time.RFC3339, c.Query("start"))
	end, err2 := time.Parse(time.RFC3339, c.Query("end"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "start and end must be RFC3339 timestamps"})
		return
	}
	free, err := gc.Repo.InstanceFreeForPeriod(c.Request.Context(), c.Param("instanceId"), start, end)
	if err != nil {
		writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"available": free})
}
