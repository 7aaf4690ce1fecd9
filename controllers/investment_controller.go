package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"finco/services"
	"finco/utils"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

// opportunitiesCacheTTL определяет время жизни кэша витрины заявок
const opportunitiesCacheTTL = 15 * time.Second

// InvestmentController обрабатывает запросы, связанные с инвестициями
type InvestmentController struct {
	investmentService *services.InvestmentService
	redis             *redis.Client
}

// NewInvestmentController создает новый экземпляр InvestmentController
func NewInvestmentController(investmentService *services.InvestmentService, rdb *redis.Client) *InvestmentController {
	return &InvestmentController{
		investmentService: investmentService,
		redis:             rdb,
	}
}

// CreateInvestment обрабатывает создание инвестиции
func (c *InvestmentController) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := r.Context().Value("employee_id").(uint)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var dto services.CreateInvestmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	dto.EmployeeID = employeeID

	investment, err := c.investmentService.CreateInvestment(dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Витрина и кошелек инвестора изменились
	if c.redis != nil {
		if err := utils.DeleteCache(r.Context(), c.redis, opportunitiesCacheKey(employeeID)); err != nil {
			utils.LogError("Ошибка сброса кэша витрины: %v", err)
		}
		if err := utils.DeleteCache(r.Context(), c.redis, walletCacheKey(employeeID)); err != nil {
			utils.LogError("Ошибка сброса кэша кошелька: %v", err)
		}
	}

	writeJSON(w, http.StatusCreated, investment)
}

func opportunitiesCacheKey(employeeID uint) string {
	return fmt.Sprintf("opportunities:%d", employeeID)
}

// GetOpportunities возвращает витрину доступных для инвестирования заявок
func (c *InvestmentController) GetOpportunities(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := r.Context().Value("employee_id").(uint)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if c.redis != nil {
		var cached []services.OpportunityDTO
		if found, err := utils.GetCache(r.Context(), c.redis, opportunitiesCacheKey(employeeID), &cached); err == nil && found {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	opportunities, err := c.investmentService.GetAvailableCreditRequests(employeeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if c.redis != nil {
		if err := utils.SetCache(r.Context(), c.redis, opportunitiesCacheKey(employeeID), opportunities, opportunitiesCacheTTL); err != nil {
			utils.LogError("Ошибка записи кэша витрины: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, opportunities)
}

// GetInvestments возвращает инвестиции текущего сотрудника
func (c *InvestmentController) GetInvestments(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := r.Context().Value("employee_id").(uint)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	investments, err := c.investmentService.GetInvestmentsByEmployee(employeeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, investments)
}

// GetInvestmentsByCreditRequest возвращает инвестиции по заявке
func (c *InvestmentController) GetInvestmentsByCreditRequest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	requestID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid credit request ID")
		return
	}

	investments, err := c.investmentService.GetInvestmentsByCreditRequest(uint(requestID))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, investments)
}
