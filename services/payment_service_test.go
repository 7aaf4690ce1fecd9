package services

import (
	"errors"
	"math"
	"testing"
	"time"

	"finco/models"
)

// fundedInvestment создает полностью профинансированную заявку одним инвестором
func fundedInvestment(t *testing.T, db *testDBBundle, amount float64, termMonths int) (*models.Investment, *models.CreditRequest, *models.Employee) {
	t.Helper()

	borrower := createTestEmployee(t, db.db, models.RoleEmployee)
	investor := createTestEmployee(t, db.db, models.RoleEmployee)
	fundWallet(t, db.db, investor.ID, amount)

	request := approvedRequest(t, db.credits, borrower, amount, termMonths)

	investment, err := db.investments.CreateInvestment(CreateInvestmentDTO{
		EmployeeID:      investor.ID,
		CreditRequestID: request.ID,
		Amount:          amount,
	})
	if err != nil {
		t.Fatalf("не удалось создать инвестицию: %v", err)
	}

	return investment, request, investor
}

func TestScheduleAmounts(t *testing.T) {
	bundle := newTestBundle(t)
	investment, request, _ := fundedInvestment(t, bundle, 6000, 12)

	var payments []models.Payment
	if err := bundle.db.Where("investment_id = ?", investment.ID).
		Order("due_date ASC, id ASC").
		Find(&payments).Error; err != nil {
		t.Fatalf("не удалось получить график: %v", err)
	}
	if len(payments) != 13 {
		t.Fatalf("в графике %d выплат, ожидалось 13", len(payments))
	}

	// Процентная выплата: сумма инвестиции умножается на месячную ставку
	wantInterest := 6000 * request.InterestRate
	var interestCount, dividendCount int
	for _, payment := range payments {
		switch payment.Type {
		case models.PaymentTypeInterest:
			interestCount++
			if math.Abs(payment.Amount-wantInterest) > 1e-9 {
				t.Errorf("процентная выплата %v, ожидалось %v", payment.Amount, wantInterest)
			}
		case models.PaymentTypeDividend:
			dividendCount++
			if payment.Amount != 6000 {
				t.Errorf("дивиденд %v, ожидалось 6000", payment.Amount)
			}
		}
		if payment.Status != models.PaymentStatusPending {
			t.Errorf("новая выплата должна быть pending, получено: %s", payment.Status)
		}
	}
	if interestCount != 12 || dividendCount != 1 {
		t.Errorf("в графике %d процентных и %d дивидендных выплат, ожидалось 12 и 1",
			interestCount, dividendCount)
	}
}

func TestProcessPaymentCreditsWalletOnce(t *testing.T) {
	bundle := newTestBundle(t)
	investment, _, investor := fundedInvestment(t, bundle, 6000, 12)

	var payment models.Payment
	if err := bundle.db.Where("investment_id = ? AND type = ?", investment.ID, models.PaymentTypeInterest).
		Order("due_date ASC").
		First(&payment).Error; err != nil {
		t.Fatalf("не удалось получить выплату: %v", err)
	}

	processed, err := bundle.payments.ProcessPayment(payment.ID)
	if err != nil {
		t.Fatalf("не удалось провести выплату: %v", err)
	}
	if processed.Status != models.PaymentStatusPaid {
		t.Errorf("статус %s, ожидался paid", processed.Status)
	}
	if processed.PaidAt == nil {
		t.Errorf("у проведенной выплаты должна быть отметка времени")
	}

	wallet, err := bundle.wallets.GetOrCreateWallet(investor.ID)
	if err != nil {
		t.Fatalf("не удалось получить кошелек: %v", err)
	}
	if math.Abs(wallet.Balance-payment.Amount) > 1e-9 {
		t.Errorf("баланс %v, ожидалось %v", wallet.Balance, payment.Amount)
	}

	// Повторное проведение той же выплаты отклоняется
	if _, err := bundle.payments.ProcessPayment(payment.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("ожидалась ErrInvalidState, получено: %v", err)
	}

	// Баланс не изменился
	wallet, err = bundle.wallets.GetOrCreateWallet(investor.ID)
	if err != nil {
		t.Fatalf("не удалось получить кошелек: %v", err)
	}
	if math.Abs(wallet.Balance-payment.Amount) > 1e-9 {
		t.Errorf("после повторного вызова баланс %v, ожидалось %v", wallet.Balance, payment.Amount)
	}
}

func TestMarkPaymentFailed(t *testing.T) {
	bundle := newTestBundle(t)
	investment, _, investor := fundedInvestment(t, bundle, 6000, 12)

	var payment models.Payment
	if err := bundle.db.Where("investment_id = ?", investment.ID).First(&payment).Error; err != nil {
		t.Fatalf("не удалось получить выплату: %v", err)
	}

	failed, err := bundle.payments.MarkPaymentFailed(payment.ID, "тестовый сбой")
	if err != nil {
		t.Fatalf("не удалось пометить выплату: %v", err)
	}
	if failed.Status != models.PaymentStatusFailed {
		t.Errorf("статус %s, ожидался failed", failed.Status)
	}

	// Кошелек не затронут
	wallet, err := bundle.wallets.GetOrCreateWallet(investor.ID)
	if err != nil {
		t.Fatalf("не удалось получить кошелек: %v", err)
	}
	if wallet.Balance != 0 {
		t.Errorf("баланс %v, ожидалось 0", wallet.Balance)
	}

	// Статус failed терминален
	if _, err := bundle.payments.ProcessPayment(payment.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("ожидалась ErrInvalidState, получено: %v", err)
	}
	if _, err := bundle.payments.MarkPaymentFailed(payment.ID, "повтор"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("ожидалась ErrInvalidState, получено: %v", err)
	}
}

func TestCompletionAfterAllPayments(t *testing.T) {
	bundle := newTestBundle(t)
	investment, request, _ := fundedInvestment(t, bundle, 3000, 3)

	var payments []models.Payment
	if err := bundle.db.Where("investment_id = ?", investment.ID).
		Order("due_date ASC, id ASC").
		Find(&payments).Error; err != nil {
		t.Fatalf("не удалось получить график: %v", err)
	}
	if len(payments) != 4 {
		t.Fatalf("в графике %d выплат, ожидалось 4", len(payments))
	}

	// Проводим все выплаты кроме последней: заявка остается funded
	for _, payment := range payments[:len(payments)-1] {
		if _, err := bundle.payments.ProcessPayment(payment.ID); err != nil {
			t.Fatalf("не удалось провести выплату #%d: %v", payment.ID, err)
		}
	}

	var reloaded models.CreditRequest
	if err := bundle.db.First(&reloaded, request.ID).Error; err != nil {
		t.Fatalf("не удалось перечитать заявку: %v", err)
	}
	if reloaded.Status != models.CreditRequestStatusFunded {
		t.Errorf("до последней выплаты статус %s, ожидался funded", reloaded.Status)
	}

	// Последняя выплата завершает цикл заявки
	if _, err := bundle.payments.ProcessPayment(payments[len(payments)-1].ID); err != nil {
		t.Fatalf("не удалось провести последнюю выплату: %v", err)
	}

	if err := bundle.db.First(&reloaded, request.ID).Error; err != nil {
		t.Fatalf("не удалось перечитать заявку: %v", err)
	}
	if reloaded.Status != models.CreditRequestStatusCompleted {
		t.Errorf("после всех выплат статус %s, ожидался completed", reloaded.Status)
	}
}

func TestGetDuePayments(t *testing.T) {
	bundle := newTestBundle(t)
	investment, _, _ := fundedInvestment(t, bundle, 3000, 3)

	// Сдвигаем срок первой выплаты в прошлое
	var first models.Payment
	if err := bundle.db.Where("investment_id = ?", investment.ID).
		Order("due_date ASC").
		First(&first).Error; err != nil {
		t.Fatalf("не удалось получить выплату: %v", err)
	}
	if err := bundle.db.Model(&first).
		Update("due_date", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("не удалось обновить срок выплаты: %v", err)
	}

	due, err := bundle.payments.GetDuePayments(time.Now())
	if err != nil {
		t.Fatalf("не удалось получить наступившие выплаты: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("наступило %d выплат, ожидалась 1", len(due))
	}
	if due[0].ID != first.ID {
		t.Errorf("наступившая выплата #%d, ожидалась #%d", due[0].ID, first.ID)
	}
}

func TestGetPaymentSummary(t *testing.T) {
	bundle := newTestBundle(t)
	investment, _, investor := fundedInvestment(t, bundle, 3000, 3)

	var payments []models.Payment
	if err := bundle.db.Where("investment_id = ?", investment.ID).
		Order("due_date ASC, id ASC").
		Find(&payments).Error; err != nil {
		t.Fatalf("не удалось получить график: %v", err)
	}

	if _, err := bundle.payments.ProcessPayment(payments[0].ID); err != nil {
		t.Fatalf("не удалось провести выплату: %v", err)
	}
	if _, err := bundle.payments.MarkPaymentFailed(payments[1].ID, "тест"); err != nil {
		t.Fatalf("не удалось пометить выплату: %v", err)
	}

	summary, err := bundle.payments.GetPaymentSummary(investor.ID)
	if err != nil {
		t.Fatalf("не удалось получить сводку: %v", err)
	}
	if summary.CountPaid != 1 {
		t.Errorf("проведено %d выплат, ожидалась 1", summary.CountPaid)
	}
	if summary.CountFailed != 1 {
		t.Errorf("неуспешных %d выплат, ожидалась 1", summary.CountFailed)
	}
	if summary.CountPending != 2 {
		t.Errorf("ожидается %d выплат, ожидалось 2", summary.CountPending)
	}
}
