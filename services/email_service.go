package services

import (
	"fmt"
	"time"

	"finco/config"

	"gopkg.in/gomail.v2"
)

// EmailService предоставляет методы для отправки email
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки email: %v", err)
	}

	return nil
}

// SendInvestmentNotification отправляет инвестору подтверждение инвестиции
func (s *EmailService) SendInvestmentNotification(to string, creditRequestID uint, amount float64) error {
	subject := "Подтверждение инвестиции"
	body := fmt.Sprintf(`
		<h2>Инвестиция оформлена</h2>
		<p>Заявка: #%d</p>
		<p>Сумма инвестиции: %.2f</p>
		<p>Дата: %s</p>
		<p>График выплат доступен в личном кабинете.</p>
	`, creditRequestID, amount, time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(to, subject, body)
}

// SendFundingNotification отправляет заемщику уведомление о полном
// финансировании его заявки
func (s *EmailService) SendFundingNotification(to string, creditRequestID uint, amount float64) error {
	subject := "Ваша заявка полностью профинансирована"
	body := fmt.Sprintf(`
		<h2>Поздравляем!</h2>
		<p>Ваша заявка #%d на сумму %.2f полностью профинансирована коллегами.</p>
		<p>Выплаты по графику начнутся в следующем месяце.</p>
		<p>С уважением,<br>Команда платформы</p>
	`, creditRequestID, amount)

	return s.SendEmail(to, subject, body)
}

// SendPaymentNotification отправляет инвестору уведомление о поступившей выплате
func (s *EmailService) SendPaymentNotification(to string, investmentID uint, amount float64, paymentType string) error {
	subject := "Уведомление о выплате"
	body := fmt.Sprintf(`
		<h2>Уведомление о выплате</h2>
		<p>Инвестиция: #%d</p>
		<p>Тип выплаты: %s</p>
		<p>Сумма: %.2f</p>
		<p>Дата: %s</p>
	`, investmentID, paymentType, amount, time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(to, subject, body)
}
