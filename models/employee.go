package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// EmployeeRole представляет роль сотрудника в системе
type EmployeeRole string

const (
	RoleEmployee EmployeeRole = "employee" // Обычный сотрудник
	RoleManager  EmployeeRole = "manager"  // Менеджер компании
)

// Employee представляет сотрудника компании
type Employee struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"`
	Name           string          `gorm:"column:name;not null;size:100"`
	Email          string          `gorm:"column:email;unique;not null;size:100;index"`
	Password       string          `gorm:"column:password;not null;size:100"`
	Position       string          `gorm:"column:position;size:50"`
	Salary         float64         `gorm:"column:salary;type:decimal(20,2);not null"`
	Role           EmployeeRole    `gorm:"column:role;type:varchar(20);not null;default:'employee'"`
	CompanyID      uint            `gorm:"column:company_id;not null;index"`
	Company        Company         `gorm:"foreignKey:CompanyID;references:ID"`
	CreditRequests []CreditRequest `gorm:"foreignKey:EmployeeID"`
	Investments    []Investment    `gorm:"foreignKey:EmployeeID"`
	CreatedAt      time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

// TableName возвращает имя таблицы для модели Employee
func (Employee) TableName() string {
	return "employees"
}

// BeforeCreate хук для валидации перед созданием
func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if len(e.Name) < 2 || len(e.Name) > 100 {
		return errors.New("name must be between 2 and 100 characters")
	}
	if len(e.Email) < 3 || len(e.Email) > 100 {
		return errors.New("email must be between 3 and 100 characters")
	}
	if e.Role != RoleEmployee && e.Role != RoleManager {
		return errors.New("role must be employee or manager")
	}
	return nil
}
