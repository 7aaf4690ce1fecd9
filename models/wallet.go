package models

import (
	"time"
)

// Wallet представляет кошелек сотрудника.
// Баланс является кэшированной проекцией журнала транзакций:
// он всегда равен сумме транзакций со знаком по типу.
type Wallet struct {
	ID           uint                `gorm:"primaryKey;autoIncrement"`
	EmployeeID   uint                `gorm:"column:employee_id;uniqueIndex;not null"`
	Employee     Employee            `gorm:"foreignKey:EmployeeID;references:ID"`
	Balance      float64             `gorm:"column:balance;type:decimal(20,2);not null;default:0.0"`
	Transactions []WalletTransaction `gorm:"foreignKey:WalletID"`
	CreatedAt    time.Time           `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

// TableName возвращает имя таблицы для модели Wallet
func (Wallet) TableName() string {
	return "wallets"
}
