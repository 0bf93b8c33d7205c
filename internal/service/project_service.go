package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/horizon/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrProjectNotFound 在项目不存在或不属于当前用户时返回
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectNameRequired 在项目名称为空时返回
	ErrProjectNameRequired = errors.New("project name is required")
)

// ProjectService 负责项目的增删改查，所有操作都限定在单个用户内。
type ProjectService struct {
	db *gorm.DB
}

// ProjectInput 定义创建/更新项目时可配置字段
type ProjectInput struct {
	Name     string
	Color    string
	Archived bool
}

// NewProjectService 构造 ProjectService
func NewProjectService(gdb *gorm.DB) *ProjectService {
	return &ProjectService{db: gdb}
}

// List 返回用户的项目，includeArchived 为 false 时跳过已归档项目
func (s *ProjectService) List(userID uint, includeArchived bool) ([]db.Project, error) {
	var projects []db.Project

	query := s.db.Where("user_id = ?", userID)
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}

	if err := query.Order("name ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Get 根据 ID 获取项目
func (s *ProjectService) Get(userID, id uint) (*db.Project, error) {
	var project db.Project
	if err := s.db.Where("user_id = ?", userID).First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &project, nil
}

// Create 新建项目
func (s *ProjectService) Create(userID uint, input ProjectInput) (*db.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}

	project := db.Project{
		UserID:   userID,
		Name:     name,
		Color:    strings.TrimSpace(input.Color),
		Archived: input.Archived,
	}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &project, nil
}

// Update 更新项目
func (s *ProjectService) Update(userID, id uint, input ProjectInput) (*db.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}

	project, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	project.Name = name
	project.Color = strings.TrimSpace(input.Color)
	project.Archived = input.Archived

	if err := s.db.Save(project).Error; err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

// Delete 删除项目，项目下的任务保留但解除关联
func (s *ProjectService) Delete(userID, id uint) error {
	if _, err := s.Get(userID, id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Task{}).
			Where("user_id = ? AND project_id = ?", userID, id).
			Update("project_id", nil).Error; err != nil {
			return fmt.Errorf("detach project tasks: %w", err)
		}
		if err := tx.Delete(&db.Project{}, id).Error; err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
}
