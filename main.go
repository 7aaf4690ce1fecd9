package main

import (
	"fmt"
	"log"
	"net/http"

	"finco/config"
	"finco/controllers"
	"finco/database"
	"finco/middleware"
	"finco/services"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем подключение к базе данных
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer database.Close(db)

	// Инициализируем клиент Redis для кэширования витрин
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Инициализируем сервисы
	emailService := services.NewEmailService(cfg)
	rateService := services.NewRateService(cfg.CBR, cfg.Credit)
	employeeService := services.NewEmployeeService(db)
	creditService := services.NewCreditService(db, cfg.Credit, rateService)
	walletService := services.NewWalletService(db)
	paymentService := services.NewPaymentService(db, emailService)
	investmentService := services.NewInvestmentService(db, cfg.Credit, creditService, paymentService, emailService)

	// Запускаем планировщик выплат
	scheduler := services.NewPaymentSchedulerService(paymentService)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Ошибка запуска планировщика выплат: %v", err)
	}
	defer scheduler.Stop()

	// Инициализируем контроллеры
	authController := controllers.NewAuthController(employeeService, cfg)
	companyController := controllers.NewCompanyController(employeeService)
	creditController := controllers.NewCreditController(creditService, rateService)
	investmentController := controllers.NewInvestmentController(investmentService, rdb)
	walletController := controllers.NewWalletController(walletService, paymentService, rdb)
	systemController := controllers.NewSystemController(scheduler)

	// Создаем роутер
	router := mux.NewRouter()
	router.Use(middleware.Recovery)
	router.Use(middleware.CORSMiddleware)

	// Публичные маршруты
	router.HandleFunc("/api/auth/signUp", authController.SignUp).Methods("POST")
	router.HandleFunc("/api/auth/signIn", authController.SignIn).Methods("POST")
	router.HandleFunc("/api/companies", companyController.CreateCompany).Methods("POST")
	router.HandleFunc("/api/companies", companyController.GetCompanies).Methods("GET")
	router.HandleFunc("/api/key-rate", creditController.GetKeyRate).Methods("GET")

	// Защищенные маршруты
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(cfg.JWT.SecretKey)))
	protected.Use(middleware.Logger)
	protected.Use(middleware.RateLimit)

	// Маршруты кредитных заявок
	protected.HandleFunc("/credit-requests", creditController.CreateCreditRequest).Methods("POST")
	protected.HandleFunc("/credit-requests", creditController.GetCreditRequests).Methods("GET")
	protected.HandleFunc("/credit-requests/{id}", creditController.GetCreditRequest).Methods("GET")
	protected.HandleFunc("/credit-requests/{id}/investments", investmentController.GetInvestmentsByCreditRequest).Methods("GET")

	// Маршруты инвестиций
	protected.HandleFunc("/investments", investmentController.CreateInvestment).Methods("POST")
	protected.HandleFunc("/investments", investmentController.GetInvestments).Methods("GET")
	protected.HandleFunc("/investments/opportunities", investmentController.GetOpportunities).Methods("GET")

	// Маршруты кошелька и выплат
	protected.HandleFunc("/wallet", walletController.GetWallet).Methods("GET")
	protected.HandleFunc("/wallet/deposit", walletController.Deposit).Methods("POST")
	protected.HandleFunc("/wallet/withdraw", walletController.Withdraw).Methods("POST")
	protected.HandleFunc("/wallet/transactions", walletController.GetTransactions).Methods("GET")
	protected.HandleFunc("/payments", walletController.GetPayments).Methods("GET")
	protected.HandleFunc("/payments/summary", walletController.GetPaymentSummary).Methods("GET")

	// Маршруты менеджера
	manager := protected.PathPrefix("/manager").Subrouter()
	manager.Use(middleware.RequireManager)
	manager.HandleFunc("/credit-requests", creditController.GetCompanyCreditRequests).Methods("GET")
	manager.HandleFunc("/credit-requests", creditController.CreateCreditRequestWithRate).Methods("POST")
	manager.HandleFunc("/credit-requests/{id}/status", creditController.UpdateCreditRequestStatus).Methods("PUT")
	manager.HandleFunc("/employees", companyController.GetEmployees).Methods("GET")
	manager.HandleFunc("/payments/process", systemController.ProcessDuePayments).Methods("POST")
	manager.HandleFunc("/metrics", systemController.GetMetrics).Methods("GET")

	// Запускаем сервер
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на порту %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
