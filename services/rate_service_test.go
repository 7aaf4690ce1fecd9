package services

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"finco/config"
)

const keyRateResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
	<soap:Body>
		<KeyRateResponse xmlns="http://web.cbr.ru/">
			<KeyRateResult>
				<diffgram>
					<KeyRate>
						<KR>
							<DT>2025-08-29T00:00:00+03:00</DT>
							<Rate>18.00</Rate>
						</KR>
						<KR>
							<DT>2025-08-28T00:00:00+03:00</DT>
							<Rate>19.00</Rate>
						</KR>
					</KeyRate>
				</diffgram>
			</KeyRateResult>
		</KeyRateResponse>
	</soap:Body>
</soap:Envelope>`

func newRateTestServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("метод запроса %s, ожидался POST", r.Method)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestGetCentralBankRate(t *testing.T) {
	server := newRateTestServer(t, keyRateResponse, http.StatusOK)
	defer server.Close()

	rateService := NewRateService(config.CBRConfig{URL: server.URL, Margin: 0.005}, testCreditConfig())

	rate, err := rateService.GetCentralBankRate()
	if err != nil {
		t.Fatalf("не удалось получить ключевую ставку: %v", err)
	}

	// Используется первое, то есть последнее по дате, значение
	if rate != 18.00 {
		t.Errorf("ставка %v, ожидалось 18.00", rate)
	}
}

func TestGetMonthlyReferenceRate(t *testing.T) {
	server := newRateTestServer(t, keyRateResponse, http.StatusOK)
	defer server.Close()

	rateService := NewRateService(config.CBRConfig{URL: server.URL, Margin: 0.005}, testCreditConfig())

	monthly, err := rateService.GetMonthlyReferenceRate()
	if err != nil {
		t.Fatalf("не удалось получить месячный ориентир: %v", err)
	}

	// 18% годовых / 12 + маржа 0.005 = 0.02
	want := 18.0/100/12 + 0.005
	if math.Abs(monthly-want) > 1e-9 {
		t.Errorf("месячный ориентир %v, ожидалось %v", monthly, want)
	}
}

func TestGetMonthlyReferenceRateCapped(t *testing.T) {
	server := newRateTestServer(t, keyRateResponse, http.StatusOK)
	defer server.Close()

	// Большая маржа выводит ориентир за потолок ставки
	rateService := NewRateService(config.CBRConfig{URL: server.URL, Margin: 0.1}, testCreditConfig())

	monthly, err := rateService.GetMonthlyReferenceRate()
	if err != nil {
		t.Fatalf("не удалось получить месячный ориентир: %v", err)
	}
	if monthly != testCreditConfig().MaxRate {
		t.Errorf("ориентир %v, ожидался потолок %v", monthly, testCreditConfig().MaxRate)
	}
}

func TestGetCentralBankRateErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"ошибка сервиса", "Internal Server Error", http.StatusInternalServerError},
		{"пустой diffgram", `<?xml version="1.0"?><diffgram></diffgram>`, http.StatusOK},
		{"некорректный XML", "<not-xml", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newRateTestServer(t, tt.body, tt.status)
			defer server.Close()

			rateService := NewRateService(config.CBRConfig{URL: server.URL, Margin: 0.005}, testCreditConfig())
			if _, err := rateService.GetCentralBankRate(); err == nil {
				t.Errorf("ожидалась ошибка")
			}
		})
	}
}
