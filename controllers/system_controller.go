package controllers

import (
	"net/http"

	"finco/services"
	"finco/utils"
)

// SystemController обрабатывает служебные запросы менеджера
type SystemController struct {
	scheduler *services.PaymentSchedulerService
}

// NewSystemController создает новый экземпляр SystemController
func NewSystemController(scheduler *services.PaymentSchedulerService) *SystemController {
	return &SystemController{scheduler: scheduler}
}

// GetMetrics возвращает снимок метрик приложения
func (c *SystemController) GetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, utils.GetMetrics().GetMetricsSnapshot())
}

// ProcessDuePayments запускает внеочередной обход наступивших выплат
func (c *SystemController) ProcessDuePayments(w http.ResponseWriter, r *http.Request) {
	if err := c.scheduler.ProcessDuePayments(); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
