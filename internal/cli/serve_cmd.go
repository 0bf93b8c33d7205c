package cli

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/horizon/internal/db"
	"github.com/horizon/internal/handler"
	"github.com/horizon/internal/router"
	"github.com/horizon/internal/service"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			if addr == "" {
				addr = cfg.ListenAddr
			}
			gin.SetMode(cfg.GinMode)

			// 初始化超级管理员账号
			created, err := db.EnsureUser(app.DB, cfg.SuperRootUserName, cfg.SuperRootPassword)
			if err != nil {
				return fmt.Errorf("ensuring bootstrap user: %w", err)
			}
			if created {
				log.Printf("created bootstrap user %s", cfg.SuperRootUserName)
			}

			api := handler.NewAPI(app.DB, service.Settings{
				DefaultFocusMinutes: cfg.DefaultFocusMinutes,
				HeatmapWeeks:        cfg.HeatmapWeeks,
			}, app.Observer)

			r := router.SetupRouter(cfg.SessionSecret, api)
			log.Printf("horizon listening on %s", addr)
			return r.Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to LISTEN_ADDR or :PORT)")
	return cmd
}
