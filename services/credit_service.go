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

// CreateCreditRequestDTO представляет данные для создания кредитной заявки
// через путь самообслуживания: ставка вычисляется детерминированно
type CreateCreditRequestDTO struct {
	EmployeeID uint    `json:"-" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	TermMonths int     `json:"term_months" validate:"required,gt=0"`
	Purpose    string  `json:"purpose" validate:"max=200"`
}

// AdminCreateCreditRequestDTO представляет данные административного пути
// создания заявки: ставка передается явно, ноль означает ставку по
// ключевой ставке центрального банка
type AdminCreateCreditRequestDTO struct {
	EmployeeID   uint    `json:"employee_id" validate:"required"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	InterestRate float64 `json:"interest_rate" validate:"gte=0"`
	TermMonths   int     `json:"term_months" validate:"required,gt=0"`
	Purpose      string  `json:"purpose" validate:"max=200"`
}

// CreditRequestDTO представляет ответ с данными заявки и ее финансированием
type CreditRequestDTO struct {
	ID           uint    `json:"id"`
	Amount       float64 `json:"amount"`
	InterestRate float64 `json:"interest_rate"`
	TermMonths   int     `json:"term_months"`
	Purpose      string  `json:"purpose"`
	Status       string  `json:"status"`
	EmployeeID   uint    `json:"employee_id"`
	FundedAmount float64 `json:"funded_amount"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// CreditService предоставляет методы для работы с кредитными заявками
type CreditService struct {
	db        *gorm.DB
	cfg       config.CreditConfig
	validator *validator.Validate
	rates     *RateService
}

// NewCreditService создает новый экземпляр CreditService
func NewCreditService(db *gorm.DB, cfg config.CreditConfig, rates *RateService) *CreditService {
	return &CreditService{
		db:        db,
		cfg:       cfg,
		validator: validator.New(),
		rates:     rates,
	}
}

// CalculateInterestRate вычисляет месячную ставку в долях как чистую
// детерминированную функцию суммы и срока: базовая ставка плюс надбавки
// за крупную сумму и длинный срок, с потолком MaxRate.
// Функция монотонна по обоим аргументам.
func CalculateInterestRate(cfg config.CreditConfig, amount float64, termMonths int) float64 {
	rate := cfg.BaseRate

	// Надбавки за сумму: крупная сумма включает и средний порог
	if amount > cfg.HighAmountThreshold {
		rate += cfg.HighAmountStep
	}
	if amount > cfg.MidAmountThreshold {
		rate += cfg.MidAmountStep
	}

	// Надбавки за срок
	if termMonths > cfg.LongTermMonths {
		rate += cfg.LongTermStep
	}
	if termMonths > cfg.MidTermMonths {
		rate += cfg.MidTermStep
	}

	// Потолок ставки
	if rate > cfg.MaxRate {
		rate = cfg.MaxRate
	}

	return rate
}

// CreateRequest создает кредитную заявку через путь самообслуживания
func (s *CreditService) CreateRequest(dto CreateCreditRequestDTO) (*models.CreditRequest, error) {
	// Валидируем DTO
	if err := s.validator.Struct(dto); err != nil {
		return nil, formatValidationErrors(err)
	}

	// Ставка вычисляется детерминированно, а не принимается от вызывающего
	rate := CalculateInterestRate(s.cfg, dto.Amount, dto.TermMonths)

	return s.createRequest(dto.EmployeeID, dto.Amount, rate, dto.TermMonths, dto.Purpose)
}

// CreateRequestWithRate создает кредитную заявку через административный путь.
// При нулевой ставке используется ориентир по ключевой ставке центрального
// банка, а при его недоступности детерминированное ценообразование.
func (s *CreditService) CreateRequestWithRate(dto AdminCreateCreditRequestDTO) (*models.CreditRequest, error) {
	// Валидируем DTO
	if err := s.validator.Struct(dto); err != nil {
		return nil, formatValidationErrors(err)
	}

	rate := dto.InterestRate
	if rate == 0 {
		suggested, err := s.rates.GetMonthlyReferenceRate()
		if err != nil {
			utils.LogError("Ошибка получения ключевой ставки, используем расчетную: %v", err)
			suggested = CalculateInterestRate(s.cfg, dto.Amount, dto.TermMonths)
		}
		rate = suggested
	}

	return s.createRequest(dto.EmployeeID, dto.Amount, rate, dto.TermMonths, dto.Purpose)
}

// createRequest выполняет общую часть создания заявки
func (s *CreditService) createRequest(employeeID uint, amount, rate float64, termMonths int, purpose string) (*models.CreditRequest, error) {
	// Проверяем границы суммы
	if amount < s.cfg.MinAmount || amount > s.cfg.MaxAmount {
		return nil, fmt.Errorf("%w: сумма заявки должна быть от %.2f до %.2f",
			ErrInvalidAmount, s.cfg.MinAmount, s.cfg.MaxAmount)
	}

	// Проверяем границы срока
	if termMonths < s.cfg.MinTermMonths || termMonths > s.cfg.MaxTermMonths {
		return nil, fmt.Errorf("%w: срок заявки должен быть от %d до %d месяцев",
			ErrInvalidAmount, s.cfg.MinTermMonths, s.cfg.MaxTermMonths)
	}

	request := &models.CreditRequest{
		Amount:       amount,
		InterestRate: rate,
		TermMonths:   termMonths,
		Purpose:      purpose,
		Status:       models.CreditRequestStatusPending,
		EmployeeID:   employeeID,
	}

	// Проверка сотрудника, проверка повторной pending-заявки и вставка
	// идут в одной транзакции; частичный уникальный индекс в схеме
	// страхует гонку на уровне базы данных
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Проверяем существование сотрудника
		var employee models.Employee
		if err := tx.First(&employee, employeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: сотрудник %d", ErrNotFound, employeeID)
			}
			return fmt.Errorf("ошибка при поиске сотрудника: %v", err)
		}

		// Проверяем, нет ли уже заявки в статусе pending
		var pending models.CreditRequest
		err := tx.Where("employee_id = ? AND status = ?", employeeID, models.CreditRequestStatusPending).
			First(&pending).Error
		if err == nil {
			return fmt.Errorf("%w: у сотрудника уже есть заявка в статусе pending", ErrConflict)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("ошибка при проверке заявок: %v", err)
		}

		// Создаем заявку
		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("ошибка при создании заявки: %v", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordCreditOperation("create")
	utils.LogInfo("Создана кредитная заявка #%d сотрудника %d на сумму %.2f", request.ID, employeeID, amount)

	return request, nil
}

// SetStatus меняет статус кредитной заявки по решению менеджера.
// Менеджер может распоряжаться только заявками сотрудников своей компании.
func (s *CreditService) SetStatus(creditRequestID uint, newStatus models.CreditRequestStatus, actorCompanyID uint) (*models.CreditRequest, error) {
	var request models.CreditRequest

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Получаем заявку вместе с сотрудником
		if err := tx.Preload("Employee").First(&request, creditRequestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: заявка %d", ErrNotFound, creditRequestID)
			}
			return fmt.Errorf("ошибка при поиске заявки: %v", err)
		}

		// Компания менеджера должна совпадать с компанией владельца заявки
		if request.Employee.CompanyID != actorCompanyID {
			return fmt.Errorf("%w: заявка принадлежит сотруднику другой компании", ErrForbidden)
		}

		// Статус completed терминален
		if request.Status == models.CreditRequestStatusCompleted {
			return fmt.Errorf("%w: заявка завершена", ErrInvalidTransition)
		}

		// Из rejected разрешен только переход в cancelled
		if request.Status == models.CreditRequestStatusRejected && newStatus != models.CreditRequestStatusCancelled {
			return fmt.Errorf("%w: отклоненную заявку можно только отменить", ErrInvalidTransition)
		}

		// Применяем новый статус
		request.Status = newStatus
		request.UpdatedAt = time.Now()
		if err := tx.Save(&request).Error; err != nil {
			return fmt.Errorf("ошибка при обновлении статуса: %v", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	switch newStatus {
	case models.CreditRequestStatusApproved:
		utils.GetMetrics().RecordCreditOperation("approve")
	case models.CreditRequestStatusRejected:
		utils.GetMetrics().RecordCreditOperation("reject")
	}
	utils.LogInfo("Заявка #%d переведена в статус %s", request.ID, newStatus)

	return &request, nil
}

// GetFundedAmount возвращает собранную сумму по заявке.
// Сумма всегда вычисляется из инвестиций и нигде не денормализуется.
func (s *CreditService) GetFundedAmount(creditRequestID uint) (float64, error) {
	return fundedAmount(s.db, creditRequestID)
}

// CheckFullyFunded проверяет полноту финансирования и единолично выполняет
// автоматический переход approved → funded. Повторный вызов на уже
// профинансированной заявке ничего не меняет и не считается ошибкой.
func (s *CreditService) CheckFullyFunded(tx *gorm.DB, request *models.CreditRequest) (bool, error) {
	if request.Status == models.CreditRequestStatusFunded {
		return true, nil
	}
	if request.Status != models.CreditRequestStatusApproved {
		return false, nil
	}

	funded, err := fundedAmount(tx, request.ID)
	if err != nil {
		return false, err
	}
	if funded < request.Amount {
		return false, nil
	}

	// Заявка собрала запрошенную сумму
	request.Status = models.CreditRequestStatusFunded
	request.UpdatedAt = time.Now()
	if err := tx.Save(request).Error; err != nil {
		return false, fmt.Errorf("ошибка при переводе заявки в статус funded: %v", err)
	}

	utils.GetMetrics().RecordCreditOperation("fund")
	utils.LogInfo("Заявка #%d полностью профинансирована", request.ID)

	return true, nil
}

// GetRequestByID возвращает заявку по ID
func (s *CreditService) GetRequestByID(id uint) (*models.CreditRequest, error) {
	var request models.CreditRequest
	if err := s.db.Preload("Employee").Preload("Investments").First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: заявка %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("ошибка при поиске заявки: %v", err)
	}
	return &request, nil
}

// GetRequestsByEmployee возвращает все заявки сотрудника
func (s *CreditService) GetRequestsByEmployee(employeeID uint) ([]models.CreditRequest, error) {
	var requests []models.CreditRequest
	if err := s.db.Where("employee_id = ?", employeeID).
		Preload("Investments").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении заявок: %v", err)
	}
	return requests, nil
}

// GetRequestsByCompany возвращает заявки сотрудников компании,
// при необходимости отфильтрованные по статусу
func (s *CreditService) GetRequestsByCompany(companyID uint, status models.CreditRequestStatus) ([]models.CreditRequest, error) {
	query := s.db.Joins("JOIN employees ON employees.id = credit_requests.employee_id").
		Where("employees.company_id = ?", companyID)
	if status != "" {
		query = query.Where("credit_requests.status = ?", status)
	}

	var requests []models.CreditRequest
	if err := query.Preload("Employee").
		Order("credit_requests.created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении заявок компании: %v", err)
	}
	return requests, nil
}

// ToDTO конвертирует заявку в DTO с вычисленной собранной суммой
func (s *CreditService) ToDTO(request *models.CreditRequest) (*CreditRequestDTO, error) {
	funded, err := fundedAmount(s.db, request.ID)
	if err != nil {
		return nil, err
	}

	return &CreditRequestDTO{
		ID:           request.ID,
		Amount:       request.Amount,
		InterestRate: request.InterestRate,
		TermMonths:   request.TermMonths,
		Purpose:      request.Purpose,
		Status:       string(request.Status),
		EmployeeID:   request.EmployeeID,
		FundedAmount: funded,
		CreatedAt:    request.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    request.UpdatedAt.Format(time.RFC3339),
	}, nil
}

// fundedAmount суммирует инвестиции по заявке
func fundedAmount(tx *gorm.DB, creditRequestID uint) (float64, error) {
	var funded float64
	if err := tx.Model(&models.Investment{}).
		Where("credit_request_id = ?", creditRequestID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&funded).Error; err != nil {
		return 0, fmt.Errorf("ошибка при подсчете собранной суммы: %v", err)
	}
	return funded, nil
}
