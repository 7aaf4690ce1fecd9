package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"finco/models"
	"finco/services"
	"finco/utils"

	"github.com/redis/go-redis/v9"
)

// walletCacheTTL определяет время жизни кэша кошелька
const walletCacheTTL = 30 * time.Second

// WalletController обрабатывает запросы, связанные с кошельками и выплатами
type WalletController struct {
	walletService  *services.WalletService
	paymentService *services.PaymentService
	redis          *redis.Client
}

// NewWalletController создает новый экземпляр WalletController
func NewWalletController(walletService *services.WalletService, paymentService *services.PaymentService, rdb *redis.Client) *WalletController {
	return &WalletController{
		walletService:  walletService,
		paymentService: paymentService,
		redis:          rdb,
	}
}

// AmountRequest представляет тело запроса пополнения или вывода
type AmountRequest struct {
	Amount float64 `json:"amount"`
}

// WalletResponse представляет кошелек с последней операцией
type WalletResponse struct {
	Wallet      *models.Wallet            `json:"wallet"`
	Transaction *models.WalletTransaction `json:"transaction,omitempty"`
}

func walletCacheKey(employeeID uint) string {
	return fmt.Sprintf("wallet:%d", employeeID)
}

// invalidateWallet сбрасывает кэш кошелька после изменения баланса
func (c *WalletController) invalidateWallet(r *http.Request, employeeID uint) {
	if c.redis == nil {
		return
	}
	if err := utils.DeleteCache(r.Context(), c.redis, walletCacheKey(employeeID)); err != nil {
		utils.LogError("Ошибка сброса кэша кошелька: %v", err)
	}
}

// GetWallet возвращает кошелек текущего сотрудника, создавая его при
// первом обращении. Ответ кэшируется на короткое время.
func (c *WalletController) GetWallet(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := r.Context().Value("employee_id").(uint)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if c.redis != nil {
		var cached models.Wallet
		if found, err := utils.GetCache(r.Context(), c.redis, walletCacheKey(employeeID), &cached); err == nil && found {
			writeJSON(w, http.StatusOK, WalletResponse{Wallet: &cached})
			return
		}
	}

	wallet, err := c.walletService.GetOrCreateWallet(employeeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if c.redis != nil {
		if err := utils.SetCache(r.Context(), c.redis, walletCacheKey(employeeID), wallet, walletCacheTTL); err != nil {
			utils.LogError("Ошибка записи кэша кошелька: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, WalletResponse{Wallet: wallet})
}

// Deposit обрабатывает пополнение кошелька
func (c *WalletController) Deposit(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := r.Context().Value("employee_id").(uint)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	wallet, transaction, err := c.walletService.Deposit(employeeID, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	c.invalidateWallet(r, employeeID)
	writeJSON(w, http.StatusOK, WalletResponse{Wallet: wallet, Transaction: transaction})
}

// Withdraw обрабатывает вывод средств с кошелька
func (c *WalletController) Withdraw(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := r.Context().Value("employee_id").(uint)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	wallet, transaction, err := c.walletService.Withdraw(employeeID, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	c.invalidateWallet(r, employeeID)
	writeJSON(w, http.StatusOK, WalletResponse{Wallet: wallet, Transaction: transaction})
}

// GetTransactions возвращает журнал операций кошелька
// с опциональным фильтром ?type=
func (c *WalletController) GetTransactions(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := r.Context().Value("employee_id").(uint)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	transactionType := models.TransactionType(r.URL.Query().Get("type"))

	transactions, err := c.walletService.GetTransactions(employeeID, transactionType)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transactions)
}

// GetPayments возвращает выплаты по инвестициям текущего сотрудника
// с опциональным фильтром ?status=
func (c *WalletController) GetPayments(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := r.Context().Value("employee_id").(uint)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	payments, err := c.paymentService.GetPaymentsByEmployee(employeeID, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payments)
}

// GetPaymentSummary возвращает сводку по выплатам текущего сотрудника
func (c *WalletController) GetPaymentSummary(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := r.Context().Value("employee_id").(uint)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summary, err := c.paymentService.GetPaymentSummary(employeeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
