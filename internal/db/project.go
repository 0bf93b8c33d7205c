package db

import "gorm.io/gorm"

// Project 将任务分组，归属于单个用户。
type Project struct {
	gorm.Model
	UserID   uint   `gorm:"index;not null"`
	Name     string `gorm:"size:120;not null"`
	Color    string `gorm:"size:16"`
	Archived bool   `gorm:"default:false"`
	Tasks    []Task `gorm:"constraint:OnDelete:SET NULL"`
}
