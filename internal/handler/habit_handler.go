package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/horizon/internal/db"
	"github.com/horizon/internal/metrics"
	"github.com/horizon/internal/service"
)

type habitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Archived    bool   `json:"archived"`
}

type completionRequest struct {
	Completed *bool `json:"completed"`
}

type habitResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DescriptionHTML string `json:"descriptionHtml"`
	Color           string `json:"color"`
	Archived        bool   `json:"archived"`
	CurrentStreak   int    `json:"currentStreak"`
	CompletedToday  bool   `json:"completedToday"`
	CreatedAt       string `json:"createdAt"`
}

type completionEntry struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

type habitStatsResponse struct {
	CurrentStreak     int               `json:"currentStreak"`
	LongestStreak     int               `json:"longestStreak"`
	CompletionRate    float64           `json:"completionRate"`
	RangeStart        string            `json:"rangeStart"`
	RangeEnd          string            `json:"rangeEnd"`
	CompletionHistory []completionEntry `json:"completionHistory"`
}

func (r habitRequest) input() service.HabitInput {
	return service.HabitInput{
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		Archived:    r.Archived,
	}
}

// habitView 附加连续天数与今日打卡状态
func (a *API) habitView(habit *db.Habit, now time.Time) (habitResponse, error) {
	history, err := a.completions.AllHistory(habit.ID)
	if err != nil {
		return habitResponse{}, err
	}

	today := metrics.StartOfDay(now)
	completedToday := false
	for _, record := range metrics.NormalizeCompletions(history) {
		if record.Date.Equal(today) {
			completedToday = record.Completed
		}
	}

	return habitResponse{
		ID:              habit.ID,
		Name:            habit.Name,
		Description:     habit.Description,
		DescriptionHTML: service.RenderMarkdown(habit.Description),
		Color:           habit.Color,
		Archived:        habit.Archived,
		CurrentStreak:   metrics.CurrentStreak(history, now),
		CompletedToday:  completedToday,
		CreatedAt:       isoTime(habit.CreatedAt),
	}, nil
}

// ListHabits 返回习惯列表
func (a *API) ListHabits(c *gin.Context) {
	habits, err := a.habits.List(currentUserID(c), c.Query("archived") == "true")
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list habits")
		return
	}

	now := a.clock()
	items := make([]habitResponse, 0, len(habits))
	for i := range habits {
		view, err := a.habitView(&habits[i], now)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to load habit history")
			return
		}
		items = append(items, view)
	}
	c.JSON(http.StatusOK, gin.H{"habits": items})
}

// GetHabit 获取单个习惯
func (a *API) GetHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid habit id")
		return
	}

	habit, err := a.habits.Get(currentUserID(c), id)
	if err != nil {
		handleHabitError(c, err)
		return
	}
	a.respondHabit(c, http.StatusOK, habit)
}

// CreateHabit 新建习惯
func (a *API) CreateHabit(c *gin.Context) {
	var req habitRequest
	if !bindJSON(c, &req, "invalid habit payload") {
		return
	}

	habit, err := a.habits.Create(currentUserID(c), req.input())
	if err != nil {
		handleHabitError(c, err)
		return
	}
	a.respondHabit(c, http.StatusCreated, habit)
}

// UpdateHabit 更新习惯
func (a *API) UpdateHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid habit id")
		return
	}

	var req habitRequest
	if !bindJSON(c, &req, "invalid habit payload") {
		return
	}

	habit, err := a.habits.Update(currentUserID(c), id, req.input())
	if err != nil {
		handleHabitError(c, err)
		return
	}
	a.respondHabit(c, http.StatusOK, habit)
}

// DeleteHabit 删除习惯及其打卡记录
func (a *API) DeleteHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid habit id")
		return
	}

	if err := a.habits.Delete(currentUserID(c), id); err != nil {
		handleHabitError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetHabitCompletion 记录某天的打卡状态，未传 completed 时视为完成
func (a *API) SetHabitCompletion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid habit id")
		return
	}

	day, err := metrics.ParseTimestamp(c.Param("date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req completionRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "invalid completion payload") {
		return
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	userID := currentUserID(c)
	now := a.clock()
	record, err := a.completions.Upsert(userID, id, day, completed, now)
	if err != nil {
		handleHabitError(c, err)
		return
	}

	history, err := a.completions.AllHistory(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load habit history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habitId":       id,
		"date":          isoTime(record.Date),
		"completed":     record.Completed,
		"currentStreak": metrics.CurrentStreak(history, now),
		"longestStreak": metrics.LongestStreak(history),
	})
}

// GetHabitStats 返回连续天数、完成率与最近 days 天的打卡历史
func (a *API) GetHabitStats(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid habit id")
		return
	}

	days, err := parseIntQuery(c, "days", 0)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := a.completions.Stats(currentUserID(c), id, days, a.clock())
	if err != nil {
		handleHabitError(c, err)
		return
	}

	history := make([]completionEntry, 0, len(stats.CompletionHistory))
	for _, record := range stats.CompletionHistory {
		history = append(history, completionEntry{Date: isoTime(record.Date), Completed: record.Completed})
	}

	c.JSON(http.StatusOK, habitStatsResponse{
		CurrentStreak:     stats.CurrentStreak,
		LongestStreak:     stats.LongestStreak,
		CompletionRate:    stats.CompletionRate,
		RangeStart:        isoTime(stats.RangeStart),
		RangeEnd:          isoTime(stats.RangeEnd),
		CompletionHistory: history,
	})
}

func (a *API) respondHabit(c *gin.Context, status int, habit *db.Habit) {
	view, err := a.habitView(habit, a.clock())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load habit history")
		return
	}
	c.JSON(status, gin.H{"habit": view})
}

func handleHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrHabitNameRequired), errors.Is(err, service.ErrCompletionInFuture):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "habit operation failed")
	}
}
