package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"finco/models"
	"finco/services"

	"github.com/gorilla/mux"
)

// CreditController обрабатывает запросы, связанные с кредитными заявками
type CreditController struct {
	creditService *services.CreditService
	rateService   *services.RateService
}

// NewCreditController создает новый экземпляр CreditController
func NewCreditController(creditService *services.CreditService, rateService *services.RateService) *CreditController {
	return &CreditController{
		creditService: creditService,
		rateService:   rateService,
	}
}

// CreateCreditRequest обрабатывает создание кредитной заявки сотрудником
func (c *CreditController) CreateCreditRequest(w http.ResponseWriter, r *http.Request) {
	// Получаем ID сотрудника из контекста
	employeeID, ok := r.Context().Value("employee_id").(uint)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var dto services.CreateCreditRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	dto.EmployeeID = employeeID

	request, err := c.creditService.CreateRequest(dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response, err := c.creditService.ToDTO(request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

// CreateCreditRequestWithRate обрабатывает административное создание заявки
// с явной ставкой; нулевая ставка означает ориентир по ключевой ставке
func (c *CreditController) CreateCreditRequestWithRate(w http.ResponseWriter, r *http.Request) {
	var dto services.AdminCreateCreditRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	request, err := c.creditService.CreateRequestWithRate(dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response, err := c.creditService.ToDTO(request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

// GetCreditRequests возвращает заявки текущего сотрудника
func (c *CreditController) GetCreditRequests(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := r.Context().Value("employee_id").(uint)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requests, err := c.creditService.GetRequestsByEmployee(employeeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := make([]*services.CreditRequestDTO, 0, len(requests))
	for i := range requests {
		dto, err := c.creditService.ToDTO(&requests[i])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response = append(response, dto)
	}

	writeJSON(w, http.StatusOK, response)
}

// GetCreditRequest возвращает заявку по ID с собранной суммой
func (c *CreditController) GetCreditRequest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid credit request ID")
		return
	}

	request, err := c.creditService.GetRequestByID(uint(requestID))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response, err := c.creditService.ToDTO(request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// UpdateCreditRequestStatusRequest представляет тело запроса смены статуса
type UpdateCreditRequestStatusRequest struct {
	Status string `json:"status"`
}

// UpdateCreditRequestStatus обрабатывает решение менеджера по заявке
func (c *CreditController) UpdateCreditRequestStatus(w http.ResponseWriter, r *http.Request) {
	companyID, ok := r.Context().Value("company_id").(uint)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	requestID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid credit request ID")
		return
	}

	var req UpdateCreditRequestStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Менеджер выставляет только решения; funded и completed
	// назначаются системой автоматически
	status := models.CreditRequestStatus(req.Status)
	switch status {
	case models.CreditRequestStatusApproved,
		models.CreditRequestStatusRejected,
		models.CreditRequestStatusCancelled:
	default:
		writeError(w, http.StatusBadRequest, "Status must be one of: approved, rejected, cancelled")
		return
	}

	request, err := c.creditService.SetStatus(uint(requestID), status, companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response, err := c.creditService.ToDTO(request)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// GetCompanyCreditRequests возвращает заявки сотрудников компании менеджера
// с опциональным фильтром ?status=
func (c *CreditController) GetCompanyCreditRequests(w http.ResponseWriter, r *http.Request) {
	companyID, ok := r.Context().Value("company_id").(uint)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	status := models.CreditRequestStatus(r.URL.Query().Get("status"))

	requests, err := c.creditService.GetRequestsByCompany(companyID, status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := make([]*services.CreditRequestDTO, 0, len(requests))
	for i := range requests {
		dto, err := c.creditService.ToDTO(&requests[i])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response = append(response, dto)
	}

	writeJSON(w, http.StatusOK, response)
}

// GetKeyRate возвращает текущую ключевую ставку центрального банка
func (c *CreditController) GetKeyRate(w http.ResponseWriter, r *http.Request) {
	rate, err := c.rateService.GetCentralBankRate()
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	monthly, err := c.rateService.GetMonthlyReferenceRate()
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{
		"key_rate":     rate,
		"monthly_rate": monthly,
	})
}
