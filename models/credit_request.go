package models

import (
	"time"
)

// CreditRequestStatus представляет статус кредитной заявки
type CreditRequestStatus string

const (
	CreditRequestStatusPending   CreditRequestStatus = "pending"   // Заявка ожидает решения менеджера
	CreditRequestStatusApproved  CreditRequestStatus = "approved"  // Заявка одобрена и открыта для инвестиций
	CreditRequestStatusRejected  CreditRequestStatus = "rejected"  // Заявка отклонена менеджером
	CreditRequestStatusCancelled CreditRequestStatus = "cancelled" // Заявка отменена
	CreditRequestStatusFunded    CreditRequestStatus = "funded"    // Заявка полностью профинансирована
	CreditRequestStatusCompleted CreditRequestStatus = "completed" // Все выплаты по заявке произведены
)

// CreditRequest представляет кредитную заявку сотрудника
type CreditRequest struct {
	ID           uint                `gorm:"primaryKey;autoIncrement"`
	Amount       float64             `gorm:"column:amount;type:decimal(20,2);not null"`
	InterestRate float64             `gorm:"column:interest_rate;not null"` // месячная ставка в долях (0.02 = 2% в месяц)
	TermMonths   int                 `gorm:"column:term_months;not null"`
	Purpose      string              `gorm:"column:purpose;size:200"`
	Status       CreditRequestStatus `gorm:"column:status;type:varchar(20);not null;default:'pending';index"`
	EmployeeID   uint                `gorm:"column:employee_id;not null;index"`
	Employee     Employee            `gorm:"foreignKey:EmployeeID;references:ID"`
	Investments  []Investment        `gorm:"foreignKey:CreditRequestID"`
	CreatedAt    time.Time           `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

// TableName возвращает имя таблицы для модели CreditRequest
func (CreditRequest) TableName() string {
	return "credit_requests"
}
