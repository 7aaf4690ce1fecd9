package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"finco/config"
	"finco/database"
	"finco/services"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuthController(t *testing.T) (*AuthController, *services.EmployeeService) {
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

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret-key"
	cfg.JWT.ExpiresIn = 24

	employeeService := services.NewEmployeeService(db)
	return NewAuthController(employeeService, cfg), employeeService
}

func TestSignUpAndSignIn(t *testing.T) {
	controller, employeeService := setupAuthController(t)

	company, err := employeeService.CreateCompany(services.CreateCompanyDTO{
		Name:  "Рога и копыта",
		Email: "office@roga.local",
	})
	if err != nil {
		t.Fatalf("не удалось создать компанию: %v", err)
	}

	// Регистрируем сотрудника
	body, _ := json.Marshal(map[string]interface{}{
		"name":       "Иван Петров",
		"email":      "ivan@roga.local",
		"password":   "Secret123",
		"position":   "Инженер",
		"salary":     120000,
		"company_id": company.ID,
	})
	req := httptest.NewRequest("POST", "/api/auth/signUp", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	controller.SignUp(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("SignUp вернул статус %d, ожидался %d: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var signUpResponse SignInResponse
	if err := json.NewDecoder(rr.Body).Decode(&signUpResponse); err != nil {
		t.Fatalf("не удалось разобрать ответ: %v", err)
	}
	if signUpResponse.Token == "" {
		t.Errorf("ответ регистрации не содержит токен")
	}

	// Входим с теми же учетными данными
	body, _ = json.Marshal(map[string]string{
		"email":    "ivan@roga.local",
		"password": "Secret123",
	})
	req = httptest.NewRequest("POST", "/api/auth/signIn", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	controller.SignIn(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("SignIn вернул статус %d, ожидался %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var signInResponse SignInResponse
	if err := json.NewDecoder(rr.Body).Decode(&signInResponse); err != nil {
		t.Fatalf("не удалось разобрать ответ: %v", err)
	}
	if signInResponse.Token == "" {
		t.Errorf("ответ входа не содержит токен")
	}
	if signInResponse.Employee.Email != "ivan@roga.local" {
		t.Errorf("email сотрудника %s, ожидался ivan@roga.local", signInResponse.Employee.Email)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	controller, employeeService := setupAuthController(t)

	company, err := employeeService.CreateCompany(services.CreateCompanyDTO{
		Name:  "Рога и копыта",
		Email: "office@roga.local",
	})
	if err != nil {
		t.Fatalf("не удалось создать компанию: %v", err)
	}
	if _, err := employeeService.RegisterEmployee(services.RegisterEmployeeDTO{
		Name:      "Иван Петров",
		Email:     "ivan@roga.local",
		Password:  "Secret123",
		Position:  "Инженер",
		Salary:    120000,
		CompanyID: company.ID,
	}); err != nil {
		t.Fatalf("не удалось зарегистрировать сотрудника: %v", err)
	}

	body, _ := json.Marshal(map[string]string{
		"email":    "ivan@roga.local",
		"password": "WrongPass1",
	})
	req := httptest.NewRequest("POST", "/api/auth/signIn", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	controller.SignIn(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("SignIn вернул статус %d, ожидался %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestSignUpWeakPassword(t *testing.T) {
	controller, _ := setupAuthController(t)

	// Пароль без цифр и заглавных букв не проходит валидацию
	body, _ := json.Marshal(map[string]interface{}{
		"name":       "Иван Петров",
		"email":      "ivan@roga.local",
		"password":   "weakpassword",
		"position":   "Инженер",
		"salary":     120000,
		"company_id": 1,
	})
	req := httptest.NewRequest("POST", "/api/auth/signUp", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	controller.SignUp(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("SignUp вернул статус %d, ожидался %d", rr.Code, http.StatusBadRequest)
	}
}
