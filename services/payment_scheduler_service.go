package services

import (
	"time"

	"finco/utils"

	"github.com/robfig/cron/v3"
)

// PaymentSchedulerService предоставляет автоматическое проведение выплат,
// срок которых наступил
type PaymentSchedulerService struct {
	payments *PaymentService
	cron     *cron.Cron
}

// NewPaymentSchedulerService создает новый экземпляр PaymentSchedulerService
func NewPaymentSchedulerService(payments *PaymentService) *PaymentSchedulerService {
	return &PaymentSchedulerService{
		payments: payments,
		cron:     cron.New(),
	}
}

// Start запускает планировщик выплат: обход наступивших выплат каждый час
func (s *PaymentSchedulerService) Start() error {
	if _, err := s.cron.AddFunc("@every 1h", func() {
		if err := s.ProcessDuePayments(); err != nil {
			utils.LogError("Ошибка при обработке наступивших выплат: %v", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	utils.LogInfo("Планировщик выплат запущен")
	return nil
}

// Stop останавливает планировщик, дожидаясь завершения текущего обхода
func (s *PaymentSchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	utils.LogInfo("Планировщик выплат остановлен")
}

// ProcessDuePayments проводит все выплаты, срок которых наступил.
// Каждая выплата проводится в собственной транзакции: сбой одной
// не откатывает остальные, а сама выплата помечается как failed.
func (s *PaymentSchedulerService) ProcessDuePayments() error {
	due, err := s.payments.GetDuePayments(time.Now())
	if err != nil {
		return err
	}

	for _, payment := range due {
		if _, err := s.payments.ProcessPayment(payment.ID); err != nil {
			utils.LogError("Ошибка при проведении выплаты #%d: %v", payment.ID, err)
			if _, markErr := s.payments.MarkPaymentFailed(payment.ID, err.Error()); markErr != nil {
				utils.LogError("Ошибка при пометке выплаты #%d как failed: %v", payment.ID, markErr)
			}
		}
	}

	if len(due) > 0 {
		utils.LogInfo("Обход планировщика: обработано %d выплат", len(due))
	}
	return nil
}
