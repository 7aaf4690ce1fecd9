package services

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"finco/config"
	"finco/utils"

	"github.com/beevik/etree"
)

// RateService получает ключевую ставку ЦБ РФ через SOAP-сервис
type RateService struct {
	url     string
	margin  float64
	maxRate float64
	client  *http.Client
}

// NewRateService создает новый экземпляр RateService
func NewRateService(cfg config.CBRConfig, credit config.CreditConfig) *RateService {
	return &RateService{
		url:     cfg.URL,
		margin:  cfg.Margin,
		maxRate: credit.MaxRate,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// buildSOAPRequest формирует SOAP-запрос ключевой ставки за последние 30 дней
func (s *RateService) buildSOAPRequest() string {
	fromDate := time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	toDate := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<KeyRate xmlns="http://web.cbr.ru/">
					<fromDate>%s</fromDate>
					<ToDate>%s</ToDate>
				</KeyRate>
			</soap12:Body>
		</soap12:Envelope>`, fromDate, toDate)
}

// sendRequest отправляет SOAP-запрос в ЦБ
func (s *RateService) sendRequest(soapRequest string) ([]byte, error) {
	req, err := http.NewRequest("POST", s.url, bytes.NewBuffer([]byte(soapRequest)))
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании запроса: %v", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/KeyRate")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка при запросе к ЦБ: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("неожиданный статус ответа ЦБ: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении ответа ЦБ: %v", err)
	}

	utils.LogDebug("Ответ ЦБ: %s", string(body))
	return body, nil
}

// parseXMLResponse извлекает последнее значение ключевой ставки из XML
func (s *RateService) parseXMLResponse(rawBody []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("ошибка при разборе XML: %v", err)
	}

	krElements := doc.FindElements("//diffgram/KeyRate/KR")
	if len(krElements) == 0 {
		return 0, fmt.Errorf("в ответе ЦБ нет данных о ключевой ставке")
	}

	rateElement := krElements[0].FindElement("./Rate")
	if rateElement == nil {
		return 0, fmt.Errorf("в ответе ЦБ отсутствует элемент Rate")
	}

	var rate float64
	if _, err := fmt.Sscanf(rateElement.Text(), "%f", &rate); err != nil {
		return 0, fmt.Errorf("ошибка при разборе значения ставки: %v", err)
	}

	return rate, nil
}

// GetCentralBankRate возвращает текущую ключевую ставку в процентах годовых
func (s *RateService) GetCentralBankRate() (float64, error) {
	soapRequest := s.buildSOAPRequest()
	body, err := s.sendRequest(soapRequest)
	if err != nil {
		return 0, err
	}

	rate, err := s.parseXMLResponse(body)
	if err != nil {
		return 0, err
	}

	utils.LogInfo("Получена ключевая ставка ЦБ: %.2f%%", rate)
	return rate, nil
}

// GetMonthlyReferenceRate переводит годовую ключевую ставку в месячную
// долю с учетом маржи площадки. Результат ограничен сверху максимальной
// ставкой, принятой для заявок.
func (s *RateService) GetMonthlyReferenceRate() (float64, error) {
	keyRate, err := s.GetCentralBankRate()
	if err != nil {
		return 0, err
	}

	monthly := keyRate/100/12 + s.margin
	if monthly > s.maxRate {
		monthly = s.maxRate
	}
	return monthly, nil
}
