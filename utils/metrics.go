package utils

import (
	"sync"
	"time"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики кредитов и инвестиций
	CreatedRequests     int64
	ApprovedRequests    int64
	RejectedRequests    int64
	FundedRequests      int64
	CompletedRequests   int64
	TotalInvestments    int64
	InvestedAmount      float64
	LastFundingActivity time.Time

	// Метрики выплат
	ProcessedPayments int64
	FailedPayments    int64
	PaidOutAmount     float64
	LastPaymentSweep  time.Time

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics возвращает экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ErrorTypes: make(map[string]int64),
		}
	})
	return metrics
}

// RecordRequest записывает метрики HTTP-запроса
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if failed {
		m.FailedRequests++
	}
}

// RecordCreditOperation записывает метрики операции с кредитной заявкой
func (m *Metrics) RecordCreditOperation(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastFundingActivity = time.Now()

	switch operation {
	case "create":
		m.CreatedRequests++
	case "approve":
		m.ApprovedRequests++
	case "reject":
		m.RejectedRequests++
	case "fund":
		m.FundedRequests++
	case "complete":
		m.CompletedRequests++
	}
}

// RecordInvestment записывает метрики созданной инвестиции
func (m *Metrics) RecordInvestment(amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalInvestments++
	m.InvestedAmount += amount
	m.LastFundingActivity = time.Now()
}

// RecordPayment записывает метрики обработанной выплаты
func (m *Metrics) RecordPayment(amount float64, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastPaymentSweep = time.Now()
	if failed {
		m.FailedPayments++
		return
	}
	m.ProcessedPayments++
	m.PaidOutAmount += amount
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}

	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot возвращает снимок текущих метрик
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"total_requests":     m.TotalRequests,
		"failed_requests":    m.FailedRequests,
		"average_latency":    m.AverageLatency.String(),
		"created_requests":   m.CreatedRequests,
		"approved_requests":  m.ApprovedRequests,
		"rejected_requests":  m.RejectedRequests,
		"funded_requests":    m.FundedRequests,
		"completed_requests": m.CompletedRequests,
		"total_investments":  m.TotalInvestments,
		"invested_amount":    m.InvestedAmount,
		"processed_payments": m.ProcessedPayments,
		"failed_payments":    m.FailedPayments,
		"paid_out_amount":    m.PaidOutAmount,
		"error_count":        m.ErrorCount,
		"last_error_time":    m.LastErrorTime,
		"error_types":        m.ErrorTypes,
	}
}

// ResetMetrics сбрасывает все метрики
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.CreatedRequests = 0
	m.ApprovedRequests = 0
	m.RejectedRequests = 0
	m.FundedRequests = 0
	m.CompletedRequests = 0
	m.TotalInvestments = 0
	m.InvestedAmount = 0
	m.ProcessedPayments = 0
	m.FailedPayments = 0
	m.PaidOutAmount = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
