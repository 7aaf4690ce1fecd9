package controllers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"finco/config"
	"finco/services"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthController обрабатывает регистрацию и вход сотрудников
type AuthController struct {
	employees *services.EmployeeService
	validate  *validator.Validate
	config    *config.Config
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignInResponse struct {
	Token    string               `json:"token"`
	Employee services.EmployeeDTO `json:"employee"`
}

type SignUpRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=100"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8,password"`
	Position  string  `json:"position" validate:"required,min=2,max=100"`
	Salary    float64 `json:"salary" validate:"required,gt=0"`
	Role      string  `json:"role" validate:"omitempty,oneof=employee manager"`
	CompanyID uint    `json:"company_id" validate:"required"`
}

// NewAuthController создает новый экземпляр AuthController
func NewAuthController(employees *services.EmployeeService, cfg *config.Config) *AuthController {
	validate := validator.New()

	// Регистрация кастомной валидации для пароля
	validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		// Проверка на наличие хотя бы одной цифры
		hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
		// Проверка на наличие хотя бы одной заглавной буквы
		hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
		// Проверка на наличие хотя бы одной строчной буквы
		hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)

		return hasNumber && hasUpper && hasLower
	})

	return &AuthController{
		employees: employees,
		validate:  validate,
		config:    cfg,
	}
}

// SignUp обрабатывает регистрацию сотрудника
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Валидация запроса
	if err := c.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		writeError(w, http.StatusBadRequest, validationErrors.Error())
		return
	}

	employee, err := c.employees.RegisterEmployee(services.RegisterEmployeeDTO{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Position:  req.Position,
		Salary:    req.Salary,
		Role:      req.Role,
		CompanyID: req.CompanyID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	tokenString, err := c.generateToken(employee.ID, employee.CompanyID, string(employee.Role))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, SignInResponse{
		Token:    tokenString,
		Employee: services.ToEmployeeDTO(employee),
	})
}

// SignIn обрабатывает вход сотрудника
func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Валидация запроса
	if err := c.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		writeError(w, http.StatusBadRequest, validationErrors.Error())
		return
	}

	// Ищем сотрудника по email
	employee, err := c.employees.FindByEmail(req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// Проверяем пароль
	if err := bcrypt.CompareHashAndPassword([]byte(employee.Password), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	tokenString, err := c.generateToken(employee.ID, employee.CompanyID, string(employee.Role))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, SignInResponse{
		Token:    tokenString,
		Employee: services.ToEmployeeDTO(employee),
	})
}

// generateToken создает JWT токен
func (c *AuthController) generateToken(employeeID, companyID uint, role string) (string, error) {
	expirationTime := time.Now().Add(time.Duration(c.config.JWT.ExpiresIn) * time.Hour)
	claims := jwt.MapClaims{
		"employee_id": employeeID,
		"company_id":  companyID,
		"role":        role,
		"exp":         expirationTime.Unix(),
		"iat":         time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.config.JWT.SecretKey))
}
