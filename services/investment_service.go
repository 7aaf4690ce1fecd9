package services

import (
	"errors"
	"fmt"
	"time"

	"finco/config"
	"finco/models"
	"finco/utils"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// CreateInvestmentDTO представляет данные для создания инвестиции
type CreateInvestmentDTO struct {
	EmployeeID      uint    `json:"-" validate:"required"`
	CreditRequestID uint    `json:"credit_request_id" validate:"required"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
}

// OpportunityDTO представляет доступную для инвестирования заявку
// с аннотациями о ходе финансирования
type OpportunityDTO struct {
	ID                   uint    `json:"id"`
	Amount               float64 `json:"amount"`
	InterestRate         float64 `json:"interest_rate"`
	TermMonths           int     `json:"term_months"`
	Purpose              string  `json:"purpose"`
	EmployeeID           uint    `json:"employee_id"`
	InvestedAmount       float64 `json:"invested_amount"`
	RemainingAmount      float64 `json:"remaining_amount"`
	InvestmentPercentage float64 `json:"investment_percentage"`
	CreatedAt            string  `json:"created_at"`
}

// InvestmentService предоставляет методы распределения капитала по заявкам
type InvestmentService struct {
	db        *gorm.DB
	cfg       config.CreditConfig
	validator *validator.Validate
	credits   *CreditService
	payments  *PaymentService
	email     *EmailService
}

// NewInvestmentService создает новый экземпляр InvestmentService
func NewInvestmentService(db *gorm.DB, cfg config.CreditConfig, credits *CreditService, payments *PaymentService, email *EmailService) *InvestmentService {
	return &InvestmentService{
		db:        db,
		cfg:       cfg,
		validator: validator.New(),
		credits:   credits,
		payments:  payments,
		email:     email,
	}
}

// CreateInvestment создает инвестицию в кредитную заявку.
// Проверка остатка, вставка инвестиции, списание с кошелька, график выплат
// и возможный переход в funded выполняются в одной транзакции под блокировкой
// строки заявки, чтобы два инвестора не могли совместно превысить сумму.
func (s *InvestmentService) CreateInvestment(dto CreateInvestmentDTO) (*models.Investment, error) {
	// Валидируем DTO
	if err := s.validator.Struct(dto); err != nil {
		return nil, formatValidationErrors(err)
	}

	var investment *models.Investment
	var request models.CreditRequest
	funded := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Проверяем существование инвестора
		var investor models.Employee
		if err := tx.First(&investor, dto.EmployeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: сотрудник %d", ErrNotFound, dto.EmployeeID)
			}
			return fmt.Errorf("ошибка при поиске сотрудника: %v", err)
		}

		// Захватываем блокировку строки заявки обычным UPDATE:
		// последующая проверка остатка сериализуется по заявке
		lock := tx.Model(&models.CreditRequest{}).
			Where("id = ?", dto.CreditRequestID).
			UpdateColumn("updated_at", time.Now())
		if lock.Error != nil {
			return fmt.Errorf("ошибка при блокировке заявки: %v", lock.Error)
		}
		if lock.RowsAffected == 0 {
			return fmt.Errorf("%w: заявка %d", ErrNotFound, dto.CreditRequestID)
		}

		// Получаем заявку под блокировкой
		if err := tx.Preload("Employee").First(&request, dto.CreditRequestID).Error; err != nil {
			return fmt.Errorf("ошибка при поиске заявки: %v", err)
		}

		// Инвестировать можно только в одобренные заявки
		if request.Status != models.CreditRequestStatusApproved {
			return fmt.Errorf("%w: заявка в статусе %s не принимает инвестиции", ErrInvalidState, request.Status)
		}

		// Инвестиция в собственную заявку запрещена
		if investor.ID == request.EmployeeID {
			return fmt.Errorf("%w: нельзя инвестировать в собственную заявку", ErrForbidden)
		}

		// Проверяем минимальную сумму инвестиции
		if dto.Amount < s.cfg.MinInvestment {
			return fmt.Errorf("%w: минимальная сумма инвестиции %.2f", ErrInvalidAmount, s.cfg.MinInvestment)
		}

		// Проверяем остаток: превышение отклоняется, а не усекается
		investedSoFar, err := fundedAmount(tx, request.ID)
		if err != nil {
			return err
		}
		remaining := request.Amount - investedSoFar
		if dto.Amount > remaining {
			return fmt.Errorf("%w: инвестиция превышает остаток заявки, максимум %.2f", ErrInvalidAmount, remaining)
		}

		// Создаем инвестицию
		investment = &models.Investment{
			Amount:          dto.Amount,
			EmployeeID:      investor.ID,
			CreditRequestID: request.ID,
		}
		if err := tx.Create(investment).Error; err != nil {
			return fmt.Errorf("ошибка при создании инвестиции: %v", err)
		}

		// Списываем капитал с кошелька инвестора
		wallet, err := getOrCreateWallet(tx, investor.ID)
		if err != nil {
			return err
		}
		if _, err := debitWallet(tx, wallet.ID, dto.Amount, models.TransactionTypeInvestment,
			fmt.Sprintf("Инвестиция в заявку #%d", request.ID), &investment.ID); err != nil {
			return err
		}

		// Формируем график выплат по инвестиции
		if err := s.payments.schedulePayments(tx, investment, &request); err != nil {
			return err
		}

		// Проверяем полноту финансирования: единственный автоматический
		// переход статуса в системе
		funded, err = s.credits.CheckFullyFunded(tx, &request)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordInvestment(dto.Amount)
	utils.LogInfo("Инвестиция #%d: сотрудник %d вложил %.2f в заявку #%d",
		investment.ID, dto.EmployeeID, dto.Amount, request.ID)

	// Уведомления не блокируют операцию: ошибки отправки только логируются
	s.notify(investment, &request, funded)

	return investment, nil
}

// notify отправляет email-уведомления об инвестиции и полном финансировании
func (s *InvestmentService) notify(investment *models.Investment, request *models.CreditRequest, funded bool) {
	if s.email == nil {
		return
	}

	var investor models.Employee
	if err := s.db.First(&investor, investment.EmployeeID).Error; err == nil {
		if err := s.email.SendInvestmentNotification(investor.Email, request.ID, investment.Amount); err != nil {
			utils.LogError("Ошибка отправки уведомления инвестору: %v", err)
		}
	}

	if funded {
		if err := s.email.SendFundingNotification(request.Employee.Email, request.ID, request.Amount); err != nil {
			utils.LogError("Ошибка отправки уведомления о финансировании: %v", err)
		}
	}
}

// GetAvailableCreditRequests возвращает одобренные заявки с ненулевым
// остатком, новые первыми. Заявки вызывающего сотрудника исключаются,
// как и полностью распределенные, даже если их статус еще approved.
func (s *InvestmentService) GetAvailableCreditRequests(excludingEmployeeID uint) ([]OpportunityDTO, error) {
	query := s.db.Where("status = ?", models.CreditRequestStatusApproved)
	if excludingEmployeeID != 0 {
		query = query.Where("employee_id <> ?", excludingEmployeeID)
	}

	var requests []models.CreditRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении доступных заявок: %v", err)
	}

	opportunities := make([]OpportunityDTO, 0, len(requests))
	for i := range requests {
		request := &requests[i]

		invested, err := fundedAmount(s.db, request.ID)
		if err != nil {
			return nil, err
		}

		remaining := request.Amount - invested
		if remaining <= 0 {
			continue
		}

		opportunities = append(opportunities, OpportunityDTO{
			ID:                   request.ID,
			Amount:               request.Amount,
			InterestRate:         request.InterestRate,
			TermMonths:           request.TermMonths,
			Purpose:              request.Purpose,
			EmployeeID:           request.EmployeeID,
			InvestedAmount:       invested,
			RemainingAmount:      remaining,
			InvestmentPercentage: invested / request.Amount * 100,
			CreatedAt:            request.CreatedAt.Format(time.RFC3339),
		})
	}

	return opportunities, nil
}

// GetInvestmentByID возвращает инвестицию по ID
func (s *InvestmentService) GetInvestmentByID(id uint) (*models.Investment, error) {
	var investment models.Investment
	if err := s.db.Preload("CreditRequest").First(&investment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: инвестиция %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("ошибка при поиске инвестиции: %v", err)
	}
	return &investment, nil
}

// GetInvestmentsByEmployee возвращает все инвестиции сотрудника
func (s *InvestmentService) GetInvestmentsByEmployee(employeeID uint) ([]models.Investment, error) {
	var investments []models.Investment
	if err := s.db.Where("employee_id = ?", employeeID).
		Preload("CreditRequest").
		Order("created_at DESC").
		Find(&investments).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении инвестиций: %v", err)
	}
	return investments, nil
}

// GetInvestmentsByCreditRequest возвращает все инвестиции по заявке
func (s *InvestmentService) GetInvestmentsByCreditRequest(creditRequestID uint) ([]models.Investment, error) {
	var investments []models.Investment
	if err := s.db.Where("credit_request_id = ?", creditRequestID).
		Order("created_at DESC").
		Find(&investments).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении инвестиций заявки: %v", err)
	}
	return investments, nil
}
