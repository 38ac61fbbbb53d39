package routes

import (
	"time"

	"boardshare/app"
	"boardshare/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	accountCtl := controllers.NewAccountController(s)
	gameCtl := controllers.NewGameController(s)
	requestCtl := controllers.NewBorrowRequestController(s)
	lendingCtl := controllers.NewLendingController(s)
	auditCtl := controllers.NewAuditController(s)

	authMW := app.AuthRequired(a.AppSessions(), s.Repo)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// Auth (public + protected)
	// ------------------------------
	auth := r.Group("/auth")
	{
		auth.POST("/login", accountCtl.Login)
	}
	authProt := auth.Group("", authMW, seenMW)
	{
		authProt.GET("/whoami", accountCtl.WhoAmI)
		authProt.POST("/logout", accountCtl.Logout)
	}

	// ------------------------------
	// Account admin
	// ------------------------------
	accounts := r.Group("/api/accounts", authMW, adminMW)
	{
		accounts.GET("", accountCtl.ListAccounts) // ?q=&page=&size=
		accounts.GET("/:id", accountCtl.GetAccount)
		accounts.DELETE("/:id", accountCtl.DeleteAccount)
	}

	// ------------------------------
	// Catalog: games and physical copies
	// ------------------------------
	games := r.Group("/api/games", authMW, seenMW)
	{
		games.POST("", gameCtl.CreateGame)
		games.GET("", gameCtl.ListGames)
		games.GET("/:id", gameCtl.GetGame)
		games.POST("/:id/instances", gameCtl.CreateInstance)
		games.GET("/:id/instances", gameCtl.ListInstances)
	}
	instances := r.Group("/api/instances", authMW, seenMW)
	{
		instances.GET("/:instanceId/availability", gameCtl.CheckAvailability) // ?start=&end=
	}

	// ------------------------------
	// Borrow requests
	// ------------------------------
	requests := r.Group("/api/requests", authMW, seenMW)
	{
		requests.POST("", requestCtl.Create)
		requests.GET("", requestCtl.List) // ?requesterId=&gameId=&gameInstanceId=&status=
		requests.GET("/:id", requestCtl.Get)
		requests.PATCH("/:id/status", requestCtl.UpdateStatus)
		requests.PATCH("/:id", requestCtl.UpdateDetails)
		requests.DELETE("/:id", requestCtl.Delete)
	}

	// ------------------------------
	// Lending records
	// ------------------------------
	lendings := r.Group("/api/lendings", authMW, seenMW)
	{
		lendings.GET("", lendingCtl.List) // ?ownerId=&requestId=&gameInstanceId=&status=
		lendings.GET("/overdue", lendingCtl.ListOverdue)
		lendings.GET("/:id", lendingCtl.Get)
		lendings.PATCH("/:id/status", lendingCtl.UpdateStatus)
		lendings.POST("/:id/close", lendingCtl.Close)
		lendings.POST("/:id/close-with-damage", lendingCtl.CloseWithDamage)
		lendings.PATCH("/:id/end-date", lendingCtl.UpdateEndDate)
		lendings.DELETE("/:id", lendingCtl.Delete)
	}

	// ------------------------------
	// Audit trail (admin)
	// ------------------------------
	audit := r.Group("/api/audit", authMW, adminMW)
	{
		audit.GET("", auditCtl.List) // ?recordId=&page=&size=
	}
}
