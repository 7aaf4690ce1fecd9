package config

import (
	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server struct {
		Port int
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // в часах
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	CBR    CBRConfig
	Credit CreditConfig
}

// CBRConfig представляет параметры интеграции с ЦБ РФ
type CBRConfig struct {
	URL    string  // адрес SOAP-сервиса ключевой ставки
	Margin float64 // месячная маржа площадки поверх ключевой ставки, в долях
}

// CreditConfig представляет параметры кредитования и ценообразования.
// Границы сумм и сроков зафиксированы здесь сознательно:
// все проверки в сервисах читают их из конфигурации.
type CreditConfig struct {
	MinAmount     float64 // минимальная сумма заявки
	MaxAmount     float64 // максимальная сумма заявки
	MinTermMonths int     // минимальный срок в месяцах
	MaxTermMonths int     // максимальный срок в месяцах
	MinInvestment float64 // минимальная сумма инвестиции

	// Параметры ценообразования: все ставки месячные, в долях
	BaseRate            float64 // базовая ставка
	MaxRate             float64 // потолок ставки
	MidAmountThreshold  float64 // порог средней суммы
	HighAmountThreshold float64 // порог крупной суммы
	MidAmountStep       float64 // надбавка за превышение среднего порога
	HighAmountStep      float64 // надбавка за превышение крупного порога
	MidTermMonths       int     // порог среднего срока
	LongTermMonths      int     // порог длинного срока
	MidTermStep         float64 // надбавка за средний срок
	LongTermStep        float64 // надбавка за длинный срок
}

// NewConfig создает новый экземпляр конфигурации
func NewConfig() (*Config, error) {
	v := viper.New()

	// Настройки сервера
	v.SetDefault("SERVER_PORT", 8080)

	// Настройки базы данных
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "finco_db")

	// Настройки Redis
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	// Настройки JWT
	v.SetDefault("JWT_SECRET_KEY", "your-secret-key-here")
	v.SetDefault("JWT_EXPIRES_IN", 24)

	// Настройки SMTP
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "noreply@finco.com")
	v.SetDefault("SMTP_PASSWORD", "your-app-password")
	v.SetDefault("SMTP_FROM", "noreply@finco.com")

	// Настройки SOAP-сервиса центрального банка
	v.SetDefault("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx")
	v.SetDefault("CBR_MARGIN", 0.005)

	// Параметры кредитования
	v.SetDefault("CREDIT_MIN_AMOUNT", 1000.0)
	v.SetDefault("CREDIT_MAX_AMOUNT", 50000.0)
	v.SetDefault("CREDIT_MIN_TERM_MONTHS", 3)
	v.SetDefault("CREDIT_MAX_TERM_MONTHS", 36)
	v.SetDefault("CREDIT_MIN_INVESTMENT", 100.0)
	v.SetDefault("CREDIT_BASE_RATE", 0.015)
	v.SetDefault("CREDIT_MAX_RATE", 0.035)
	v.SetDefault("CREDIT_MID_AMOUNT_THRESHOLD", 10000.0)
	v.SetDefault("CREDIT_HIGH_AMOUNT_THRESHOLD", 20000.0)
	v.SetDefault("CREDIT_MID_AMOUNT_STEP", 0.0025)
	v.SetDefault("CREDIT_HIGH_AMOUNT_STEP", 0.005)
	v.SetDefault("CREDIT_MID_TERM_MONTHS", 12)
	v.SetDefault("CREDIT_LONG_TERM_MONTHS", 24)
	v.SetDefault("CREDIT_MID_TERM_STEP", 0.0025)
	v.SetDefault("CREDIT_LONG_TERM_STEP", 0.005)

	// Переменные окружения имеют приоритет над значениями по умолчанию
	v.AutomaticEnv()

	cfg := &Config{}
	cfg.Server.Port = v.GetInt("SERVER_PORT")

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetInt("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")

	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")

	cfg.JWT.SecretKey = v.GetString("JWT_SECRET_KEY")
	cfg.JWT.ExpiresIn = v.GetInt("JWT_EXPIRES_IN")

	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")

	cfg.CBR.URL = v.GetString("CBR_URL")
	cfg.CBR.Margin = v.GetFloat64("CBR_MARGIN")

	cfg.Credit.MinAmount = v.GetFloat64("CREDIT_MIN_AMOUNT")
	cfg.Credit.MaxAmount = v.GetFloat64("CREDIT_MAX_AMOUNT")
	cfg.Credit.MinTermMonths = v.GetInt("CREDIT_MIN_TERM_MONTHS")
	cfg.Credit.MaxTermMonths = v.GetInt("CREDIT_MAX_TERM_MONTHS")
	cfg.Credit.MinInvestment = v.GetFloat64("CREDIT_MIN_INVESTMENT")
	cfg.Credit.BaseRate = v.GetFloat64("CREDIT_BASE_RATE")
	cfg.Credit.MaxRate = v.GetFloat64("CREDIT_MAX_RATE")
	cfg.Credit.MidAmountThreshold = v.GetFloat64("CREDIT_MID_AMOUNT_THRESHOLD")
	cfg.Credit.HighAmountThreshold = v.GetFloat64("CREDIT_HIGH_AMOUNT_THRESHOLD")
	cfg.Credit.MidAmountStep = v.GetFloat64("CREDIT_MID_AMOUNT_STEP")
	cfg.Credit.HighAmountStep = v.GetFloat64("CREDIT_HIGH_AMOUNT_STEP")
	cfg.Credit.MidTermMonths = v.GetInt("CREDIT_MID_TERM_MONTHS")
	cfg.Credit.LongTermMonths = v.GetInt("CREDIT_LONG_TERM_MONTHS")
	cfg.Credit.MidTermStep = v.GetFloat64("CREDIT_MID_TERM_STEP")
	cfg.Credit.LongTermStep = v.GetFloat64("CREDIT_LONG_TERM_STEP")

	return cfg, nil
}
