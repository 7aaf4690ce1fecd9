package controllers

import (
	"encoding/json"
	"net/http"

	"finco/services"
)

// CompanyController обрабатывает запросы, связанные с компаниями
type CompanyController struct {
	employeeService *services.EmployeeService
}

// NewCompanyController создает новый экземпляр CompanyController
func NewCompanyController(employeeService *services.EmployeeService) *CompanyController {
	return &CompanyController{employeeService: employeeService}
}

// CreateCompany обрабатывает регистрацию компании
func (c *CompanyController) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var dto services.CreateCompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	company, err := c.employeeService.CreateCompany(dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, company)
}

// GetCompanies возвращает список компаний
func (c *CompanyController) GetCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := c.employeeService.GetCompanies()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, companies)
}

// GetEmployees возвращает сотрудников компании менеджера
func (c *CompanyController) GetEmployees(w http.ResponseWriter, r *http.Request) {
	companyID, ok := r.Context().Value("company_id").(uint)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	employees, err := c.employeeService.GetEmployeesByCompany(companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := make([]services.EmployeeDTO, 0, len(employees))
	for i := range employees {
		response = append(response, services.ToEmployeeDTO(&employees[i]))
	}

	writeJSON(w, http.StatusOK, response)
}
