package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/horizon/internal/metrics"
)

type heatmapEntry struct {
	Date string `json:"date"`
	metrics.DayMetrics
}

type heatmapCell struct {
	Date      string `json:"date"`
	Intensity int    `json:"intensity"`
	metrics.DayMetrics
}

// GetHeatmap 返回最近 weeks 周的活动热力图，weeks 缺省时取用户设置
func (a *API) GetHeatmap(c *gin.Context) {
	userID := currentUserID(c)

	settings, err := a.settings.Get(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load settings")
		return
	}
	weeks, err := parseIntQuery(c, "weeks", settings.HeatmapWeeks)
	if err != nil || weeks < 1 || weeks > 53 {
		respondError(c, http.StatusBadRequest, "weeks must be between 1 and 53")
		return
	}

	result, err := a.analytics.Heatmap(userID, weeks, a.clock())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to build heatmap")
		return
	}

	days := make([]heatmapEntry, 0, len(result.Days))
	for _, day := range result.Days {
		days = append(days, heatmapEntry{Date: isoTime(day.Date), DayMetrics: day.DayMetrics})
	}

	grid := make([][]*heatmapCell, 0, len(result.Grid.Weeks))
	for _, week := range result.Grid.Weeks {
		column := make([]*heatmapCell, len(week))
		for i, day := range week {
			if day == nil {
				continue
			}
			column[i] = &heatmapCell{Date: isoTime(day.Date), Intensity: day.Intensity, DayMetrics: day.DayMetrics}
		}
		grid = append(grid, column)
	}

	c.JSON(http.StatusOK, gin.H{
		"heatmap":      days,
		"weeks":        grid,
		"monthLabels":  result.Grid.MonthLabels,
		"activeDays":   result.Grid.ActiveDays,
		"focusMinutes": result.Grid.FocusMinutes,
		"maxIntensity": result.Grid.MaxIntensity,
	})
}

// GetDashboard 返回今日与昨日对比的指标卡片以及进行中的专注会话
func (a *API) GetDashboard(c *gin.Context) {
	userID := currentUserID(c)
	now := a.clock()

	summary, err := a.analytics.Dashboard(userID, now)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	payload := gin.H{
		"today":     summary.Today,
		"yesterday": summary.Yesterday,
		"streak":    summary.Streak,
		"cards":     summary.Cards,
		"focus":     nil,
	}

	active, err := a.focus.Active(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load focus session")
		return
	}
	if active != nil {
		payload["focus"] = newFocusSessionResponse(active, now)
	}

	c.JSON(http.StatusOK, payload)
}
