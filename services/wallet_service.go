package services

import (
	"errors"
	"fmt"
	"time"

	"finco/models"

	"gorm.io/gorm"
)

// WalletService предоставляет методы для работы с кошельками сотрудников
type WalletService struct {
	db *gorm.DB
}

// NewWalletService создает новый экземпляр WalletService
func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// GetOrCreateWallet возвращает кошелек сотрудника, создавая его при первом обращении
func (s *WalletService) GetOrCreateWallet(employeeID uint) (*models.Wallet, error) {
	return getOrCreateWallet(s.db, employeeID)
}

// getOrCreateWallet выполняет идемпотентное получение кошелька:
// повторный вызов возвращает существующую запись
func getOrCreateWallet(tx *gorm.DB, employeeID uint) (*models.Wallet, error) {
	var wallet models.Wallet

	if err := tx.Where("employee_id = ?", employeeID).
		Attrs(models.Wallet{EmployeeID: employeeID, Balance: 0}).
		FirstOrCreate(&wallet).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении кошелька: %v", err)
	}

	return &wallet, nil
}

// Deposit пополняет кошелек сотрудника
func (s *WalletService) Deposit(employeeID uint, amount float64) (*models.Wallet, *models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, nil, fmt.Errorf("%w: сумма пополнения должна быть больше нуля", ErrInvalidAmount)
	}

	wallet, err := s.GetOrCreateWallet(employeeID)
	if err != nil {
		return nil, nil, err
	}

	var transaction *models.WalletTransaction

	// Изменение баланса и запись журнала выполняются в одной транзакции
	err = s.db.Transaction(func(tx *gorm.DB) error {
		transaction, err = creditWallet(tx, wallet.ID, amount, models.TransactionTypeDeposit,
			fmt.Sprintf("Пополнение кошелька на %.2f", amount), nil)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	// Перечитываем кошелек после изменения баланса
	if err := s.db.First(wallet, wallet.ID).Error; err != nil {
		return nil, nil, fmt.Errorf("ошибка при чтении кошелька: %v", err)
	}

	return wallet, transaction, nil
}

// Withdraw снимает средства с кошелька сотрудника
func (s *WalletService) Withdraw(employeeID uint, amount float64) (*models.Wallet, *models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, nil, fmt.Errorf("%w: сумма снятия должна быть больше нуля", ErrInvalidAmount)
	}

	wallet, err := s.GetOrCreateWallet(employeeID)
	if err != nil {
		return nil, nil, err
	}

	var transaction *models.WalletTransaction

	// Изменение баланса и запись журнала выполняются в одной транзакции
	err = s.db.Transaction(func(tx *gorm.DB) error {
		transaction, err = debitWallet(tx, wallet.ID, amount, models.TransactionTypeWithdrawal,
			fmt.Sprintf("Снятие %.2f с кошелька", amount), nil)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	// Перечитываем кошелек после изменения баланса
	if err := s.db.First(wallet, wallet.ID).Error; err != nil {
		return nil, nil, fmt.Errorf("ошибка при чтении кошелька: %v", err)
	}

	return wallet, transaction, nil
}

// GetTransactions возвращает журнал кошелька сотрудника,
// при необходимости отфильтрованный по типу транзакции
func (s *WalletService) GetTransactions(employeeID uint, transactionType models.TransactionType) ([]models.WalletTransaction, error) {
	wallet, err := s.GetOrCreateWallet(employeeID)
	if err != nil {
		return nil, err
	}

	query := s.db.Where("wallet_id = ?", wallet.ID)
	if transactionType != "" {
		query = query.Where("type = ?", transactionType)
	}

	var transactions []models.WalletTransaction
	if err := query.Order("created_at DESC").Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении транзакций: %v", err)
	}

	return transactions, nil
}

// creditWallet увеличивает баланс кошелька и создает парную запись журнала.
// Вызывается только внутри открытой транзакции.
func creditWallet(tx *gorm.DB, walletID uint, amount float64, transactionType models.TransactionType, description string, investmentID *uint) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: сумма зачисления должна быть больше нуля", ErrInvalidAmount)
	}

	// Обновляем баланс атомарным выражением
	result := tx.Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("ошибка при обновлении баланса: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: кошелек %d", ErrNotFound, walletID)
	}

	// Создаем запись журнала
	transaction := &models.WalletTransaction{
		WalletID:     walletID,
		Type:         transactionType,
		Amount:       amount,
		Description:  description,
		InvestmentID: investmentID,
	}
	if err := tx.Create(transaction).Error; err != nil {
		return nil, fmt.Errorf("ошибка при сохранении транзакции: %v", err)
	}

	return transaction, nil
}

// debitWallet уменьшает баланс кошелька и создает парную запись журнала.
// Условие balance >= amount в самом UPDATE гарантирует, что баланс
// не станет отрицательным даже при конкурентных списаниях.
// Вызывается только внутри открытой транзакции.
func debitWallet(tx *gorm.DB, walletID uint, amount float64, transactionType models.TransactionType, description string, investmentID *uint) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: сумма списания должна быть больше нуля", ErrInvalidAmount)
	}

	// Проверяем существование кошелька в рамках транзакции
	var wallet models.Wallet
	if err := tx.First(&wallet, walletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: кошелек %d", ErrNotFound, walletID)
		}
		return nil, fmt.Errorf("ошибка при поиске кошелька: %v", err)
	}

	// Списываем условным обновлением: ноль затронутых строк
	// означает недостаток средств
	result := tx.Model(&models.Wallet{}).
		Where("id = ? AND balance >= ?", walletID, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("ошибка при обновлении баланса: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: на кошельке %.2f, запрошено %.2f", ErrInsufficientFunds, wallet.Balance, amount)
	}

	// Создаем запись журнала
	transaction := &models.WalletTransaction{
		WalletID:     walletID,
		Type:         transactionType,
		Amount:       amount,
		Description:  description,
		InvestmentID: investmentID,
	}
	if err := tx.Create(transaction).Error; err != nil {
		return nil, fmt.Errorf("ошибка при сохранении транзакции: %v", err)
	}

	return transaction, nil
}
