package models

import (
	"time"
)

// Company представляет компанию-работодателя
type Company struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	Name      string     `gorm:"column:name;not null;size:100"`
	Email     string     `gorm:"column:email;unique;not null;size:100"`
	Employees []Employee `gorm:"foreignKey:CompanyID"`
	CreatedAt time.Time  `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time  `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

// TableName возвращает имя таблицы для модели Company
func (Company) TableName() string {
	return "companies"
}
