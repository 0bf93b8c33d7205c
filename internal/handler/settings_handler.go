package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/horizon/internal/service"
)

type settingsPayload struct {
	TimerPosition       string `json:"timerPosition"`
	DefaultFocusMinutes int    `json:"defaultFocusMinutes"`
	HeatmapWeeks        int    `json:"heatmapWeeks"`
}

func newSettingsPayload(settings service.Settings) settingsPayload {
	return settingsPayload{
		TimerPosition:       settings.TimerPosition,
		DefaultFocusMinutes: settings.DefaultFocusMinutes,
		HeatmapWeeks:        settings.HeatmapWeeks,
	}
}

// GetSettings 返回当前用户设置
func (a *API) GetSettings(c *gin.Context) {
	settings, err := a.settings.Get(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": newSettingsPayload(settings)})
}

// UpdateSettings 保存用户设置，缺省字段沿用当前值
func (a *API) UpdateSettings(c *gin.Context) {
	userID := currentUserID(c)

	current, err := a.settings.Get(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load settings")
		return
	}

	req := newSettingsPayload(current)
	if !bindJSON(c, &req, "invalid settings payload") {
		return
	}

	updated, err := a.settings.Update(userID, service.Settings{
		TimerPosition:       req.TimerPosition,
		DefaultFocusMinutes: req.DefaultFocusMinutes,
		HeatmapWeeks:        req.HeatmapWeeks,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidSettings) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to update settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": newSettingsPayload(updated)})
}
