package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/horizon/internal/config"
	"github.com/horizon/internal/db"
	"github.com/horizon/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// App holds the shared dependencies used by CLI commands.
type App struct {
	Config      config.AppConfig
	DB          *gorm.DB
	Auth        *service.AuthService
	Habits      *service.HabitService
	Completions *service.HabitCompletionService
	Analytics   *service.AnalyticsService
	Observer    service.FocusObserver

	// IsInteractive 报告标准输出是否为终端，决定是否输出颜色
	IsInteractive func() bool
	Now           func() time.Time
}

// NewApp wires services against an initialized database.
func NewApp(cfg config.AppConfig, gdb *gorm.DB, observer service.FocusObserver) *App {
	return &App{
		Config:        cfg,
		DB:            gdb,
		Auth:          service.NewAuthService(gdb),
		Habits:        service.NewHabitService(gdb),
		Completions:   service.NewHabitCompletionService(gdb),
		Analytics:     service.NewAnalyticsService(gdb),
		Observer:      observer,
		IsInteractive: func() bool { return false },
		Now:           time.Now,
	}
}

// NewRootCmd creates the top-level "horizon" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "horizon",
		Short:         "Tasks, habits and focus sessions in one place",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newSeedCmd(app),
		newUserCmd(app),
		newHeatmapCmd(app),
		newStreaksCmd(app),
	)

	return root
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now().UTC()
	}
	return a.Now().UTC()
}

func (a *App) color() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// findUser 按用户名查找账号
func (a *App) findUser(username string) (*db.User, error) {
	name := strings.TrimSpace(username)
	if name == "" {
		return nil, errors.New("--user is required")
	}

	var user db.User
	if err := a.DB.Where("username = ?", name).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q not found", name)
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return &user, nil
}
