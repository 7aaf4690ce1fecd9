package services

import (
	"errors"
	"fmt"

	"finco/models"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateCompanyDTO представляет данные для регистрации компании
type CreateCompanyDTO struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// RegisterEmployeeDTO представляет данные для регистрации сотрудника
type RegisterEmployeeDTO struct {
	Name      string  `json:"name" validate:"required,min=2,max=100"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	Position  string  `json:"position" validate:"required,min=2,max=100"`
	Salary    float64 `json:"salary" validate:"required,gt=0"`
	Role      string  `json:"role" validate:"omitempty,oneof=employee manager"`
	CompanyID uint    `json:"company_id" validate:"required"`
}

// EmployeeDTO представляет публичные данные сотрудника
type EmployeeDTO struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Position  string `json:"position"`
	Role      string `json:"role"`
	CompanyID uint   `json:"company_id"`
}

// EmployeeService предоставляет методы для работы с компаниями и сотрудниками
type EmployeeService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewEmployeeService создает новый экземпляр EmployeeService
func NewEmployeeService(db *gorm.DB) *EmployeeService {
	return &EmployeeService{db: db, validator: validator.New()}
}

// CreateCompany регистрирует новую компанию
func (s *EmployeeService) CreateCompany(dto CreateCompanyDTO) (*models.Company, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, formatValidationErrors(err)
	}

	// Проверяем, существует ли компания с таким email
	var existing models.Company
	if err := s.db.Where("LOWER(email) = LOWER(?)", dto.Email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: компания с таким email уже существует", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("ошибка при поиске компании: %v", err)
	}

	company := &models.Company{
		Name:  dto.Name,
		Email: dto.Email,
	}
	if err := s.db.Create(company).Error; err != nil {
		return nil, fmt.Errorf("ошибка при создании компании: %v", err)
	}

	return company, nil
}

// GetCompanies возвращает список всех компаний
func (s *EmployeeService) GetCompanies() ([]models.Company, error) {
	var companies []models.Company
	if err := s.db.Order("name ASC").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении компаний: %v", err)
	}
	return companies, nil
}

// RegisterEmployee регистрирует нового сотрудника компании
func (s *EmployeeService) RegisterEmployee(dto RegisterEmployeeDTO) (*models.Employee, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, formatValidationErrors(err)
	}

	// Проверяем существование компании
	var company models.Company
	if err := s.db.First(&company, dto.CompanyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: компания %d", ErrNotFound, dto.CompanyID)
		}
		return nil, fmt.Errorf("ошибка при поиске компании: %v", err)
	}

	// Проверяем, существует ли сотрудник с таким email
	var existing models.Employee
	if err := s.db.Where("LOWER(email) = LOWER(?)", dto.Email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: сотрудник с таким email уже существует", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("ошибка при поиске сотрудника: %v", err)
	}

	// Хешируем пароль
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка при хешировании пароля: %v", err)
	}

	role := models.EmployeeRole(dto.Role)
	if role == "" {
		role = models.RoleEmployee
	}

	employee := &models.Employee{
		Name:      dto.Name,
		Email:     dto.Email,
		Password:  string(hashedPassword),
		Position:  dto.Position,
		Salary:    dto.Salary,
		Role:      role,
		CompanyID: company.ID,
	}
	if err := s.db.Create(employee).Error; err != nil {
		return nil, fmt.Errorf("ошибка при создании сотрудника: %v", err)
	}

	return employee, nil
}

// FindByEmail ищет сотрудника по email (игнорируя регистр и пробелы)
func (s *EmployeeService) FindByEmail(email string) (*models.Employee, error) {
	var employee models.Employee
	if err := s.db.Where("LOWER(TRIM(email)) = LOWER(TRIM(?))", email).First(&employee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: сотрудник не найден", ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при поиске сотрудника: %v", err)
	}
	return &employee, nil
}

// FindByID ищет сотрудника по ID
func (s *EmployeeService) FindByID(id uint) (*models.Employee, error) {
	var employee models.Employee
	if err := s.db.First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: сотрудник %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("ошибка при поиске сотрудника: %v", err)
	}
	return &employee, nil
}

// GetEmployeesByCompany возвращает сотрудников компании
func (s *EmployeeService) GetEmployeesByCompany(companyID uint) ([]models.Employee, error) {
	var employees []models.Employee
	if err := s.db.Where("company_id = ?", companyID).Order("name ASC").Find(&employees).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении сотрудников: %v", err)
	}
	return employees, nil
}

// ToEmployeeDTO преобразует модель сотрудника в публичное представление
func ToEmployeeDTO(employee *models.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        employee.ID,
		Name:      employee.Name,
		Email:     employee.Email,
		Position:  employee.Position,
		Role:      string(employee.Role),
		CompanyID: employee.CompanyID,
	}
}
