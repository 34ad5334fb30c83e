package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminUpcomingHandler "github.com/serenity-spa/booking-agent/internal/api/handlers/admin_upcoming"
	cancelAppointmentHandler "github.com/serenity-spa/booking-agent/internal/api/handlers/cancel_appointment"
	getAvailabilityHandler "github.com/serenity-spa/booking-agent/internal/api/handlers/get_availability"
	getClientHandler "github.com/serenity-spa/booking-agent/internal/api/handlers/get_client"
	getClientAppointmentsHandler "github.com/serenity-spa/booking-agent/internal/api/handlers/get_client_appointments"
	listServicesHandler "github.com/serenity-spa/booking-agent/internal/api/handlers/list_services"
	processMessageHandler "github.com/serenity-spa/booking-agent/internal/api/handlers/process_message"
	stripeWebhookHandler "github.com/serenity-spa/booking-agent/internal/api/handlers/stripe_webhook"
	"github.com/serenity-spa/booking-agent/internal/api/middleware"
	"github.com/serenity-spa/booking-agent/internal/config"
	appointmentRepo "github.com/serenity-spa/booking-agent/internal/infra/storage/appointment"
	clientRepo "github.com/serenity-spa/booking-agent/internal/infra/storage/client"
	assistantClient "github.com/serenity-spa/booking-agent/internal/integrations/assistant"
	stripeClient "github.com/serenity-spa/booking-agent/internal/integrations/stripepay"
	"github.com/serenity-spa/booking-agent/internal/nlu"
	bookingsService "github.com/serenity-spa/booking-agent/internal/service/bookings"
	"github.com/serenity-spa/booking-agent/internal/service/conversation"
	schedulerService "github.com/serenity-spa/booking-agent/internal/service/scheduler"
	getAvailabilityUC "github.com/serenity-spa/booking-agent/internal/usecase/get_availability"
	processMessageUC "github.com/serenity-spa/booking-agent/internal/usecase/process_message"
	"github.com/serenity-spa/booking-agent/pkg/logger"
	"github.com/serenity-spa/booking-agent/pkg/metrics"
	"github.com/serenity-spa/booking-agent/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting booking-agent...")
	log.Info("Configuration loaded from config.toml")

	businessCfg, err := cfg.Business.ToDomain()
	if err != nil {
		log.Fatal("Invalid business configuration: %v", err)
	}
	log.Info("Business config loaded: %d services, studio %q", len(businessCfg.Services), businessCfg.Name)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем репозитории
	appointmentRepository := appointmentRepo.NewRepository(db)
	clientRepository := clientRepo.NewRepository(db)
	txMgr := txmanager.NewTransactionManager(db)

	// Инициализируем интеграционных клиентов
	payments := stripeClient.NewClient(stripeClient.Config{
		SecretKey:        cfg.Stripe.SecretKey,
		WebhookSecret:    cfg.Stripe.WebhookSecret,
		SuccessURL:       cfg.Stripe.SuccessURL,
		CancelURL:        cfg.Stripe.CancelURL,
		WebhookTolerance: cfg.Stripe.WebhookTolerance,
		BusinessName:     businessCfg.Name,
	}, log)
	if payments.Enabled() {
		log.Info("Stripe payments enabled")
	} else {
		log.Info("Stripe payments disabled, deposits will be skipped")
	}

	ctx := context.Background()

	var assistant conversation.Assistant
	if cfg.Assistant.Enabled {
		ai, err := assistantClient.NewClient(
			ctx,
			cfg.Assistant.APIKey,
			cfg.Assistant.Model,
			time.Duration(cfg.Assistant.Timeout)*time.Second,
			log,
		)
		if err != nil {
			log.Fatal("Failed to initialize assistant client: %v", err)
		}
		if ai != nil {
			assistant = ai
			log.Info("Assistant enabled (model=%s)", cfg.Assistant.Model)
		}
	}
	if assistant == nil {
		log.Info("Assistant disabled, off-script messages answered with templates")
	}

	// Инициализируем сервисы
	slotScheduler := schedulerService.NewService(appointmentRepository, businessCfg, log)
	bookingSvc := bookingsService.NewService(
		appointmentRepository,
		clientRepository,
		slotScheduler,
		payments,
		txMgr,
		businessCfg,
		log,
	)

	// Диалоговый агент
	parser := nlu.NewParser()
	states := conversation.NewStore()
	agent := conversation.NewAgent(
		states,
		parser,
		slotScheduler,
		bookingSvc,
		clientRepository,
		payments,
		assistant,
		businessCfg,
		log,
	)

	// Инициализируем use cases
	var messageMetrics processMessageUC.Metrics
	if metricsCollector != nil {
		messageMetrics = metricsCollector
	}
	processMessageUseCase := processMessageUC.NewUseCase(agent, messageMetrics, log)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(slotScheduler, log)

	// Инициализируем handlers
	processMessage := processMessageHandler.NewHandler(processMessageUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	listServices := listServicesHandler.NewHandler(businessCfg, log)
	getClientAppointments := getClientAppointmentsHandler.NewHandler(bookingSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(bookingSvc, log)
	getClient := getClientHandler.NewHandler(clientRepository, log)
	adminUpcoming := adminUpcomingHandler.NewHandler(bookingSvc, log)
	stripeWebhook := stripeWebhookHandler.NewHandler(payments, bookingSvc, agent, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	// Stripe webhook (вне /api/v1, подпись проверяется в handler)
	r.HandleFunc("/webhook/stripe", stripeWebhook.Handle).Methods(http.MethodPost)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// Диалог с агентом
	api.HandleFunc("/message", processMessage.Handle).Methods(http.MethodPost)

	// Доступность слотов
	api.HandleFunc("/availability", getAvailability.Handle).Methods(http.MethodGet)

	// Каталог услуг
	api.HandleFunc("/services", listServices.Handle).Methods(http.MethodGet)

	// Записи и клиенты
	api.HandleFunc("/appointments/{phone}", getClientAppointments.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/clients/{phone}", getClient.Handle).Methods(http.MethodGet)

	// Админские маршруты
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminAuth(cfg.Server.AdminToken))
	admin.HandleFunc("/upcoming", adminUpcoming.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped")
}
