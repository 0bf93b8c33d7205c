package handler

import (
	"time"

	"github.com/horizon/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	auth        *service.AuthService
	projects    *service.ProjectService
	tasks       *service.TaskService
	habits      *service.HabitService
	completions *service.HabitCompletionService
	focus       *service.FocusService
	analytics   *service.AnalyticsService
	settings    *service.SettingsService
	commands    map[string]commandHandler
	now         func() time.Time
}

// NewAPI constructs a handler set with shared services.
// defaults 为用户未自定义时的设置，observer 接收专注会话的用例事件。
func NewAPI(db *gorm.DB, defaults service.Settings, observer service.FocusObserver) *API {
	api := &API{
		db:          db,
		auth:        service.NewAuthService(db),
		projects:    service.NewProjectService(db),
		tasks:       service.NewTaskService(db),
		habits:      service.NewHabitService(db),
		completions: service.NewHabitCompletionService(db),
		focus:       service.NewFocusService(db, observer),
		analytics:   service.NewAnalyticsService(db),
		settings:    service.NewSettingsService(service.NewUserSettingStore(db), defaults),
		now:         time.Now,
	}
	api.commands = api.commandTable()
	return api
}

func (a *API) clock() time.Time {
	return a.now().UTC()
}
