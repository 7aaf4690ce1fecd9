package models

import (
	"time"
)

// Investment представляет вклад инвестора в кредитную заявку.
// Запись неизменяема после создания: обновление и удаление
// в жизненном цикле не предусмотрены.
type Investment struct {
	ID              uint          `gorm:"primaryKey;autoIncrement"`
	Amount          float64       `gorm:"column:amount;type:decimal(20,2);not null"`
	EmployeeID      uint          `gorm:"column:employee_id;not null;index"`
	Employee        Employee      `gorm:"foreignKey:EmployeeID;references:ID"`
	CreditRequestID uint          `gorm:"column:credit_request_id;not null;index"`
	CreditRequest   CreditRequest `gorm:"foreignKey:CreditRequestID;references:ID"`
	Payments        []Payment     `gorm:"foreignKey:InvestmentID"`
	CreatedAt       time.Time     `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

// TableName возвращает имя таблицы для модели Investment
func (Investment) TableName() string {
	return "investments"
}
