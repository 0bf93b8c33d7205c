package router

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/horizon/internal/handler"
)

const sessionName = "horizon_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(sessionSecret string, api *handler.API) *gin.Engine {
	r := gin.Default()

	secret := strings.TrimSpace(sessionSecret)
	if secret == "" {
		secret = "horizon-dev-secret"
	}

	// 配置会话中间件
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/ping", handler.Ping)
	r.GET("/healthz", api.HealthCheck)

	apiGroup := r.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		auth.POST("/register", api.Register)
		auth.POST("/login", api.Login)
		auth.POST("/logout", api.Logout)

		// 需要登录的接口
		secured := apiGroup.Group("")
		secured.Use(handler.AuthRequired())
		{
			secured.GET("/me", api.Me)

			secured.GET("/projects", api.ListProjects)
			secured.POST("/projects", api.CreateProject)
			secured.GET("/projects/:id", api.GetProject)
			secured.PUT("/projects/:id", api.UpdateProject)
			secured.DELETE("/projects/:id", api.DeleteProject)

			secured.GET("/tasks", api.ListTasks)
			secured.POST("/tasks", api.CreateTask)
			secured.GET("/tasks/:id", api.GetTask)
			secured.PUT("/tasks/:id", api.UpdateTask)
			secured.PATCH("/tasks/:id/status", api.UpdateTaskStatus)
			secured.DELETE("/tasks/:id", api.DeleteTask)

			secured.GET("/habits", api.ListHabits)
			secured.POST("/habits", api.CreateHabit)
			secured.GET("/habits/:id", api.GetHabit)
			secured.PUT("/habits/:id", api.UpdateHabit)
			secured.DELETE("/habits/:id", api.DeleteHabit)
			secured.PUT("/habits/:id/completions/:date", api.SetHabitCompletion)
			secured.GET("/habits/:id/stats", api.GetHabitStats)

			secured.GET("/focus", api.ListFocusSessions)
			secured.GET("/focus/active", api.GetActiveFocus)
			secured.POST("/focus", api.StartFocus)
			secured.POST("/focus/:id/pause", api.PauseFocus)
			secured.POST("/focus/:id/resume", api.ResumeFocus)
			secured.POST("/focus/:id/complete", api.CompleteFocus)
			secured.POST("/focus/:id/cancel", api.CancelFocus)

			secured.GET("/analytics/heatmap", api.GetHeatmap)
			secured.GET("/dashboard", api.GetDashboard)

			secured.GET("/settings", api.GetSettings)
			secured.PUT("/settings", api.UpdateSettings)

			secured.POST("/commands", api.ExecuteCommand)
		}
	}

	return r
}
