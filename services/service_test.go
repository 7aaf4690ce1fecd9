package services

import (
	"fmt"
	"testing"

	"finco/config"
	"finco/database"
	"finco/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testCreditConfig возвращает параметры кредитования для тестов
func testCreditConfig() config.CreditConfig {
	return config.CreditConfig{
		MinAmount:     1000,
		MaxAmount:     50000,
		MinTermMonths: 3,
		MaxTermMonths: 36,
		MinInvestment: 100,

		BaseRate:            0.015,
		MaxRate:             0.035,
		MidAmountThreshold:  10000,
		HighAmountThreshold: 20000,
		MidAmountStep:       0.0025,
		HighAmountStep:      0.005,
		MidTermMonths:       12,
		LongTermMonths:      24,
		MidTermStep:         0.0025,
		LongTermStep:        0.005,
	}
}

// setupTestDB создает базу данных в памяти со схемой приложения
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("не удалось открыть тестовую базу данных: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("не удалось выполнить миграцию схемы: %v", err)
	}

	return db
}

var testEmployeeSeq int

// createTestEmployee создает компанию и сотрудника для теста
func createTestEmployee(t *testing.T, db *gorm.DB, role models.EmployeeRole) *models.Employee {
	t.Helper()
	testEmployeeSeq++

	company := &models.Company{
		Name:  fmt.Sprintf("Компания %d", testEmployeeSeq),
		Email: fmt.Sprintf("company%d@test.local", testEmployeeSeq),
	}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("не удалось создать компанию: %v", err)
	}

	return createTestEmployeeInCompany(t, db, company.ID, role)
}

// createTestEmployeeInCompany создает сотрудника в существующей компании
func createTestEmployeeInCompany(t *testing.T, db *gorm.DB, companyID uint, role models.EmployeeRole) *models.Employee {
	t.Helper()
	testEmployeeSeq++

	employee := &models.Employee{
		Name:      fmt.Sprintf("Сотрудник %d", testEmployeeSeq),
		Email:     fmt.Sprintf("employee%d@test.local", testEmployeeSeq),
		Password:  "hashed-password",
		Position:  "Инженер",
		Salary:    100000,
		Role:      role,
		CompanyID: companyID,
	}
	if err := db.Create(employee).Error; err != nil {
		t.Fatalf("не удалось создать сотрудника: %v", err)
	}

	return employee
}

// fundWallet пополняет кошелек сотрудника до указанного баланса
func fundWallet(t *testing.T, db *gorm.DB, employeeID uint, amount float64) {
	t.Helper()

	walletService := NewWalletService(db)
	if _, _, err := walletService.Deposit(employeeID, amount); err != nil {
		t.Fatalf("не удалось пополнить кошелек: %v", err)
	}
}

// newTestServices собирает сервисы домена поверх тестовой базы данных
func newTestServices(db *gorm.DB) (*CreditService, *InvestmentService, *PaymentService, *WalletService) {
	cfg := testCreditConfig()
	creditService := NewCreditService(db, cfg, nil)
	paymentService := NewPaymentService(db, nil)
	investmentService := NewInvestmentService(db, cfg, creditService, paymentService, nil)
	walletService := NewWalletService(db)
	return creditService, investmentService, paymentService, walletService
}

// testDBBundle связывает тестовую базу данных и сервисы домена
type testDBBundle struct {
	db          *gorm.DB
	credits     *CreditService
	investments *InvestmentService
	payments    *PaymentService
	wallets     *WalletService
}

func newTestBundle(t *testing.T) *testDBBundle {
	t.Helper()

	db := setupTestDB(t)
	credits, investments, payments, wallets := newTestServices(db)
	return &testDBBundle{
		db:          db,
		credits:     credits,
		investments: investments,
		payments:    payments,
		wallets:     wallets,
	}
}
