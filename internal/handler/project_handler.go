package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/horizon/internal/db"
	"github.com/horizon/internal/service"
)

type projectRequest struct {
	Name     string `json:"name"`
	Color    string `json:"color"`
	Archived bool   `json:"archived"`
}

type projectResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Archived  bool   `json:"archived"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func newProjectResponse(project *db.Project) projectResponse {
	return projectResponse{
		ID:        project.ID,
		Name:      project.Name,
		Color:     project.Color,
		Archived:  project.Archived,
		CreatedAt: isoTime(project.CreatedAt),
		UpdatedAt: isoTime(project.UpdatedAt),
	}
}

func (r projectRequest) input() service.ProjectInput {
	return service.ProjectInput{Name: r.Name, Color: r.Color, Archived: r.Archived}
}

// ListProjects 返回项目列表，archived=true 时包含已归档项目
func (a *API) ListProjects(c *gin.Context) {
	projects, err := a.projects.List(currentUserID(c), c.Query("archived") == "true")
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list projects")
		return
	}

	items := make([]projectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, newProjectResponse(&projects[i]))
	}
	c.JSON(http.StatusOK, gin.H{"projects": items})
}

// GetProject 获取单个项目
func (a *API) GetProject(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid project id")
		return
	}

	project, err := a.projects.Get(currentUserID(c), id)
	if err != nil {
		handleProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": newProjectResponse(project)})
}

// CreateProject 新建项目
func (a *API) CreateProject(c *gin.Context) {
	var req projectRequest
	if !bindJSON(c, &req, "invalid project payload") {
		return
	}

	project, err := a.projects.Create(currentUserID(c), req.input())
	if err != nil {
		handleProjectError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": newProjectResponse(project)})
}

// UpdateProject 更新项目
func (a *API) UpdateProject(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid project id")
		return
	}

	var req projectRequest
	if !bindJSON(c, &req, "invalid project payload") {
		return
	}

	project, err := a.projects.Update(currentUserID(c), id, req.input())
	if err != nil {
		handleProjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": newProjectResponse(project)})
}

// DeleteProject 删除项目
func (a *API) DeleteProject(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid project id")
		return
	}

	if err := a.projects.Delete(currentUserID(c), id); err != nil {
		handleProjectError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func handleProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrProjectNameRequired):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "project operation failed")
	}
}
