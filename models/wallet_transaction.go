package models

import (
	"time"
)

// TransactionType представляет тип транзакции кошелька
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"    // Пополнение баланса
	TransactionTypeInvestment TransactionType = "investment" // Списание под инвестицию
	TransactionTypeDividend   TransactionType = "dividend"   // Возврат основного капитала
	TransactionTypeInterest   TransactionType = "interest"   // Начисление процентов
	TransactionTypeWithdrawal TransactionType = "withdrawal" // Снятие средств
)

// Signed возвращает сумму со знаком, определяемым типом транзакции
func (t TransactionType) Signed(amount float64) float64 {
	switch t {
	case TransactionTypeInvestment, TransactionTypeWithdrawal:
		return -amount
	default:
		return amount
	}
}

// WalletTransaction представляет запись журнала кошелька.
// Журнал append-only: записи не изменяются и не удаляются после создания.
type WalletTransaction struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	WalletID     uint            `gorm:"column:wallet_id;not null;index"`
	Type         TransactionType `gorm:"column:type;type:varchar(20);not null"`
	Amount       float64         `gorm:"column:amount;type:decimal(20,2);not null"` // всегда положительная величина
	Description  string          `gorm:"column:description;size:200"`
	InvestmentID *uint           `gorm:"column:investment_id"`
	Investment   *Investment     `gorm:"foreignKey:InvestmentID;references:ID"`
	CreatedAt    time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

// TableName возвращает имя таблицы для модели WalletTransaction
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
