package services

import (
	"errors"
	"fmt"
	"time"

	"finco/models"
	"finco/utils"

	"gorm.io/gorm"
)

// PaymentSummaryDTO представляет сводку по выплатам сотрудника
type PaymentSummaryDTO struct {
	TotalPending float64 `json:"total_pending"`
	TotalPaid    float64 `json:"total_paid"`
	TotalFailed  float64 `json:"total_failed"`
	CountPending int64   `json:"count_pending"`
	CountPaid    int64   `json:"count_paid"`
	CountFailed  int64   `json:"count_failed"`
}

// PaymentService управляет графиком выплат и их проведением
type PaymentService struct {
	db    *gorm.DB
	email *EmailService
}

// NewPaymentService создает новый экземпляр PaymentService
func NewPaymentService(db *gorm.DB, email *EmailService) *PaymentService {
	return &PaymentService{db: db, email: email}
}

// SchedulePayments формирует график выплат по инвестиции в отдельной транзакции
func (s *PaymentService) SchedulePayments(investment *models.Investment, request *models.CreditRequest) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.schedulePayments(tx, investment, request)
	})
}

// schedulePayments создает процентные выплаты за каждый месяц срока и
// дивиденд (возврат тела) в последнем месяце. Для срока N месяцев
// получается N+1 запись. Суммы фиксируются при создании графика и не
// пересчитываются при изменении заявки.
func (s *PaymentService) schedulePayments(tx *gorm.DB, investment *models.Investment, request *models.CreditRequest) error {
	now := time.Now()
	interest := investment.Amount * request.InterestRate

	payments := make([]models.Payment, 0, request.TermMonths+1)
	for month := 1; month <= request.TermMonths; month++ {
		payments = append(payments, models.Payment{
			InvestmentID: investment.ID,
			Type:         models.PaymentTypeInterest,
			Amount:       interest,
			Status:       models.PaymentStatusPending,
			DueDate:      now.Add(time.Duration(month) * 30 * 24 * time.Hour),
		})
	}
	payments = append(payments, models.Payment{
		InvestmentID: investment.ID,
		Type:         models.PaymentTypeDividend,
		Amount:       investment.Amount,
		Status:       models.PaymentStatusPending,
		DueDate:      now.Add(time.Duration(request.TermMonths) * 30 * 24 * time.Hour),
	})

	if err := tx.Create(&payments).Error; err != nil {
		return fmt.Errorf("ошибка при создании графика выплат: %v", err)
	}

	utils.LogInfo("Сформирован график из %d выплат по инвестиции #%d", len(payments), investment.ID)
	return nil
}

// ProcessPayment проводит выплату: зачисляет сумму на кошелек инвестора
// и переводит запись в статус paid. Повторный вызов по той же выплате
// отклоняется, поэтому двойное зачисление невозможно.
func (s *PaymentService) ProcessPayment(paymentID uint) (*models.Payment, error) {
	var payment models.Payment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Investment").First(&payment, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: выплата %d", ErrNotFound, paymentID)
			}
			return fmt.Errorf("ошибка при поиске выплаты: %v", err)
		}

		if payment.Status != models.PaymentStatusPending {
			return fmt.Errorf("%w: выплата %d уже в статусе %s", ErrInvalidState, paymentID, payment.Status)
		}

		// Зачисляем сумму на кошелек инвестора
		wallet, err := getOrCreateWallet(tx, payment.Investment.EmployeeID)
		if err != nil {
			return err
		}
		txType := models.TransactionTypeInterest
		description := fmt.Sprintf("Процентная выплата по инвестиции #%d", payment.InvestmentID)
		if payment.Type == models.PaymentTypeDividend {
			txType = models.TransactionTypeDividend
			description = fmt.Sprintf("Возврат тела инвестиции #%d", payment.InvestmentID)
		}
		if _, err := creditWallet(tx, wallet.ID, payment.Amount, txType, description, &payment.InvestmentID); err != nil {
			return err
		}

		now := time.Now()
		payment.Status = models.PaymentStatusPaid
		payment.PaidAt = &now
		if err := tx.Save(&payment).Error; err != nil {
			return fmt.Errorf("ошибка при обновлении выплаты: %v", err)
		}

		// Когда по заявке не осталось непроведенных выплат, цикл завершен
		return s.completeIfSettled(tx, payment.Investment.CreditRequestID)
	})
	if err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordPayment(payment.Amount, false)
	utils.LogInfo("Выплата #%d на %.2f проведена", payment.ID, payment.Amount)

	// Уведомление не блокирует операцию: ошибка отправки только логируется
	if s.email != nil {
		var investor models.Employee
		if err := s.db.First(&investor, payment.Investment.EmployeeID).Error; err == nil {
			if err := s.email.SendPaymentNotification(investor.Email, payment.InvestmentID,
				payment.Amount, string(payment.Type)); err != nil {
				utils.LogError("Ошибка отправки уведомления о выплате: %v", err)
			}
		}
	}

	return &payment, nil
}

// MarkPaymentFailed переводит выплату в терминальный статус failed
// без влияния на кошельки
func (s *PaymentService) MarkPaymentFailed(paymentID uint, reason string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: выплата %d", ErrNotFound, paymentID)
		}
		return nil, fmt.Errorf("ошибка при поиске выплаты: %v", err)
	}

	if payment.Status != models.PaymentStatusPending {
		return nil, fmt.Errorf("%w: выплата %d уже в статусе %s", ErrInvalidState, paymentID, payment.Status)
	}

	payment.Status = models.PaymentStatusFailed
	if err := s.db.Save(&payment).Error; err != nil {
		return nil, fmt.Errorf("ошибка при обновлении выплаты: %v", err)
	}

	utils.GetMetrics().RecordPayment(payment.Amount, true)
	utils.LogError("Выплата #%d помечена как failed: %s", payment.ID, reason)
	return &payment, nil
}

// completeIfSettled переводит заявку из funded в completed, когда по всем
// ее инвестициям не осталось выплат в статусе pending
func (s *PaymentService) completeIfSettled(tx *gorm.DB, creditRequestID uint) error {
	var pendingCount int64
	if err := tx.Model(&models.Payment{}).
		Joins("JOIN investments ON investments.id = payments.investment_id").
		Where("investments.credit_request_id = ? AND payments.status = ?",
			creditRequestID, models.PaymentStatusPending).
		Count(&pendingCount).Error; err != nil {
		return fmt.Errorf("ошибка при подсчете выплат: %v", err)
	}
	if pendingCount > 0 {
		return nil
	}

	var request models.CreditRequest
	if err := tx.First(&request, creditRequestID).Error; err != nil {
		return fmt.Errorf("ошибка при поиске заявки: %v", err)
	}
	if request.Status != models.CreditRequestStatusFunded {
		return nil
	}

	request.Status = models.CreditRequestStatusCompleted
	if err := tx.Save(&request).Error; err != nil {
		return fmt.Errorf("ошибка при завершении заявки: %v", err)
	}

	utils.GetMetrics().RecordCreditOperation("complete")
	utils.LogInfo("Заявка #%d завершена: все выплаты проведены", request.ID)
	return nil
}

// GetPaymentsByEmployee возвращает выплаты по инвестициям сотрудника
// с опциональным фильтром по статусу, ближайшие к сроку первыми
func (s *PaymentService) GetPaymentsByEmployee(employeeID uint, status string) ([]models.Payment, error) {
	query := s.db.Model(&models.Payment{}).
		Joins("JOIN investments ON investments.id = payments.investment_id").
		Where("investments.employee_id = ?", employeeID)
	if status != "" {
		query = query.Where("payments.status = ?", status)
	}

	var payments []models.Payment
	if err := query.Order("payments.due_date DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении выплат: %v", err)
	}
	return payments, nil
}

// GetPaymentSummary возвращает агрегированную сводку по выплатам сотрудника
func (s *PaymentService) GetPaymentSummary(employeeID uint) (*PaymentSummaryDTO, error) {
	summary := &PaymentSummaryDTO{}

	rows := []struct {
		Status models.PaymentStatus
		Total  float64
		Count  int64
	}{}
	if err := s.db.Model(&models.Payment{}).
		Select("payments.status AS status, COALESCE(SUM(payments.amount), 0) AS total, COUNT(*) AS count").
		Joins("JOIN investments ON investments.id = payments.investment_id").
		Where("investments.employee_id = ?", employeeID).
		Group("payments.status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении сводки выплат: %v", err)
	}

	for _, row := range rows {
		switch row.Status {
		case models.PaymentStatusPending:
			summary.TotalPending = row.Total
			summary.CountPending = row.Count
		case models.PaymentStatusPaid:
			summary.TotalPaid = row.Total
			summary.CountPaid = row.Count
		case models.PaymentStatusFailed:
			summary.TotalFailed = row.Total
			summary.CountFailed = row.Count
		}
	}

	return summary, nil
}

// GetDuePayments возвращает выплаты со сроком не позже указанного момента
func (s *PaymentService) GetDuePayments(deadline time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.db.Where("status = ? AND due_date <= ?", models.PaymentStatusPending, deadline).
		Order("due_date ASC").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении выплат к проведению: %v", err)
	}
	return payments, nil
}
