package models

import (
	"time"
)

// PaymentType представляет тип выплаты инвестору
type PaymentType string

const (
	PaymentTypeInterest PaymentType = "interest" // Ежемесячные проценты
	PaymentTypeDividend PaymentType = "dividend" // Возврат основного капитала в конце срока
)

// PaymentStatus представляет статус выплаты
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending" // Выплата запланирована
	PaymentStatusPaid    PaymentStatus = "paid"    // Выплата произведена
	PaymentStatusFailed  PaymentStatus = "failed"  // Выплата не удалась
)

// Payment представляет запланированную выплату по инвестиции
type Payment struct {
	ID           uint          `gorm:"primaryKey;autoIncrement"`
	InvestmentID uint          `gorm:"column:investment_id;not null;index"`
	Investment   Investment    `gorm:"foreignKey:InvestmentID;references:ID"`
	Type         PaymentType   `gorm:"column:type;type:varchar(20);not null"`
	Amount       float64       `gorm:"column:amount;type:decimal(20,2);not null"`
	Status       PaymentStatus `gorm:"column:status;type:varchar(20);not null;default:'pending';index"`
	DueDate      time.Time     `gorm:"column:due_date;not null"`
	PaidAt       *time.Time    `gorm:"column:paid_at"`
	CreatedAt    time.Time     `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time     `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

// TableName возвращает имя таблицы для модели Payment
func (Payment) TableName() string {
	return "payments"
}
