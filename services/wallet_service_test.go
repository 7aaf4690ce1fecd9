package services

import (
	"errors"
	"testing"

	"finco/models"
)

func TestGetOrCreateWalletIdempotent(t *testing.T) {
	db := setupTestDB(t)
	walletService := NewWalletService(db)
	employee := createTestEmployee(t, db, models.RoleEmployee)

	first, err := walletService.GetOrCreateWallet(employee.ID)
	if err != nil {
		t.Fatalf("не удалось создать кошелек: %v", err)
	}
	if first.Balance != 0 {
		t.Errorf("новый кошелек должен иметь нулевой баланс, получено: %v", first.Balance)
	}

	// Повторный вызов возвращает ту же запись
	second, err := walletService.GetOrCreateWallet(employee.ID)
	if err != nil {
		t.Fatalf("не удалось получить кошелек: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("повторный вызов создал новый кошелек: %d != %d", first.ID, second.ID)
	}
}

func TestDepositAndWithdraw(t *testing.T) {
	db := setupTestDB(t)
	walletService := NewWalletService(db)
	employee := createTestEmployee(t, db, models.RoleEmployee)

	wallet, transaction, err := walletService.Deposit(employee.ID, 500)
	if err != nil {
		t.Fatalf("не удалось пополнить кошелек: %v", err)
	}
	if wallet.Balance != 500 {
		t.Errorf("баланс %v, ожидалось 500", wallet.Balance)
	}
	if transaction.Type != models.TransactionTypeDeposit {
		t.Errorf("тип операции %s, ожидался deposit", transaction.Type)
	}

	// Вывод сверх баланса отклоняется и не меняет баланс
	if _, _, err := walletService.Withdraw(employee.ID, 600); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("ожидалась ErrInsufficientFunds, получено: %v", err)
	}

	reloaded, err := walletService.GetOrCreateWallet(employee.ID)
	if err != nil {
		t.Fatalf("не удалось получить кошелек: %v", err)
	}
	if reloaded.Balance != 500 {
		t.Errorf("баланс после отклоненного вывода %v, ожидалось 500", reloaded.Balance)
	}

	// Вывод всего баланса допустим: баланс никогда не уходит в минус
	wallet, _, err = walletService.Withdraw(employee.ID, 500)
	if err != nil {
		t.Fatalf("не удалось вывести средства: %v", err)
	}
	if wallet.Balance != 0 {
		t.Errorf("баланс после вывода %v, ожидалось 0", wallet.Balance)
	}
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	db := setupTestDB(t)
	walletService := NewWalletService(db)
	employee := createTestEmployee(t, db, models.RoleEmployee)

	for _, amount := range []float64{0, -100} {
		if _, _, err := walletService.Deposit(employee.ID, amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Deposit(%v): ожидалась ErrInvalidAmount, получено: %v", amount, err)
		}
		if _, _, err := walletService.Withdraw(employee.ID, amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Withdraw(%v): ожидалась ErrInvalidAmount, получено: %v", amount, err)
		}
	}
}

func TestBalanceMatchesJournal(t *testing.T) {
	db := setupTestDB(t)
	walletService := NewWalletService(db)
	employee := createTestEmployee(t, db, models.RoleEmployee)

	operations := []struct {
		deposit bool
		amount  float64
	}{
		{true, 1000},
		{true, 250},
		{false, 300},
		{true, 50},
		{false, 500},
	}

	for _, op := range operations {
		var err error
		if op.deposit {
			_, _, err = walletService.Deposit(employee.ID, op.amount)
		} else {
			_, _, err = walletService.Withdraw(employee.ID, op.amount)
		}
		if err != nil {
			t.Fatalf("операция на %v завершилась ошибкой: %v", op.amount, err)
		}
	}

	wallet, err := walletService.GetOrCreateWallet(employee.ID)
	if err != nil {
		t.Fatalf("не удалось получить кошелек: %v", err)
	}

	// Баланс равен сумме знаковых величин журнала
	transactions, err := walletService.GetTransactions(employee.ID, "")
	if err != nil {
		t.Fatalf("не удалось получить журнал: %v", err)
	}

	var total float64
	for _, transaction := range transactions {
		if transaction.Amount <= 0 {
			t.Errorf("суммы в журнале всегда положительны, получено: %v", transaction.Amount)
		}
		total += transaction.Type.Signed(transaction.Amount)
	}
	if total != wallet.Balance {
		t.Errorf("баланс %v не совпадает с журналом %v", wallet.Balance, total)
	}
	if wallet.Balance != 500 {
		t.Errorf("баланс %v, ожидалось 500", wallet.Balance)
	}
}

func TestGetTransactionsFilterByType(t *testing.T) {
	db := setupTestDB(t)
	walletService := NewWalletService(db)
	employee := createTestEmployee(t, db, models.RoleEmployee)

	if _, _, err := walletService.Deposit(employee.ID, 1000); err != nil {
		t.Fatalf("не удалось пополнить кошелек: %v", err)
	}
	if _, _, err := walletService.Withdraw(employee.ID, 200); err != nil {
		t.Fatalf("не удалось вывести средства: %v", err)
	}

	deposits, err := walletService.GetTransactions(employee.ID, models.TransactionTypeDeposit)
	if err != nil {
		t.Fatalf("не удалось получить журнал: %v", err)
	}
	if len(deposits) != 1 {
		t.Errorf("ожидалась 1 операция deposit, получено: %d", len(deposits))
	}
	for _, transaction := range deposits {
		if transaction.Type != models.TransactionTypeDeposit {
			t.Errorf("фильтр вернул операцию типа %s", transaction.Type)
		}
	}
}
