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
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_booking"
	getBookingPolicyHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_booking_policy"
	getCustomerHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_customer"
	getCustomerBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_customer_bookings"
	getStaffHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_staff"
	runMaintenanceHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/run_maintenance"
	subscribePushHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/subscribe_push"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/migrations"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	catalogRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/catalog"
	customerRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/customer"
	policyRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/policy"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	staffRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/staff"
	subscriptionRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/subscription"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/pushgateway"
	"github.com/m04kA/SMC-AppointmentService/internal/notification"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduler"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	bookingsService "github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	customersService "github.com/m04kA/SMC-AppointmentService/internal/service/customers"
	policyService "github.com/m04kA/SMC-AppointmentService/internal/service/policy"
	staffService "github.com/m04kA/SMC-AppointmentService/internal/service/staff"
	subscriptionsService "github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions"
	createBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.Load(configPath)
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

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from %s", configPath)

	location, err := cfg.Business.Location()
	if err != nil {
		log.Fatal("Failed to load business timezone %q: %v", cfg.Business.Timezone, err)
	}
	log.Info("Business timezone: %s", location)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

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

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(db); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Database migrations applied")
	}

	// Обёртка с метриками запросов, при выключенных метриках замеры не пишутся
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Инициализируем репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)
	customerRepository := customerRepo.NewRepository(wrappedDB)
	policyRepository := policyRepo.NewRepository(wrappedDB)
	staffRepository := staffRepo.NewRepository(wrappedDB)
	subscriptionRepository := subscriptionRepo.NewRepository(wrappedDB)

	// Каналы уведомлений
	var channels []notification.Channel

	if cfg.SMTP.Enabled {
		sender := notification.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		channels = append(channels, notification.NewEmailChannel(sender, location))
		log.Info("Email notifications enabled (smtp=%s:%d)", cfg.SMTP.Host, cfg.SMTP.Port)
	}

	if cfg.PushGateway.Enabled {
		pushClient := pushgateway.NewClient(cfg.PushGateway.URL, time.Duration(cfg.PushGateway.Timeout)*time.Second)
		channels = append(channels, notification.NewPushChannel(subscriptionRepository, pushClient, location, log))
		log.Info("Push notifications enabled (gateway=%s timeout=%ds)", cfg.PushGateway.URL, cfg.PushGateway.Timeout)
	}

	if cfg.Kafka.Enabled {
		brokers := notification.SplitBrokers(cfg.Kafka.Brokers)
		channels = append(channels, notification.NewKafkaChannel(brokers, cfg.Kafka.Topic))
		log.Info("Kafka booking events enabled (brokers=%v topic=%s)", brokers, cfg.Kafka.Topic)
	}

	dispatcher := notification.NewDispatcher(notification.Config{
		Workers:     cfg.Notifications.Workers,
		QueueSize:   cfg.Notifications.QueueSize,
		SendTimeout: time.Duration(cfg.Notifications.SendTimeout) * time.Second,
	}, metricsCollector, log, channels...)

	// Инициализируем сервисы
	policySvc := policyService.NewService(policyRepository, domain.BookingPolicy{
		SlotStepMinutes:  cfg.Booking.SlotStepMinutes,
		MinNoticeMinutes: cfg.Booking.MinNoticeMinutes,
	}, log)
	bookingSvc := bookingsService.NewService(bookingRepository, txMgr, dispatcher, location, time.Now, log)
	staffSvc := staffService.NewService(staffRepository, log)
	customerSvc := customersService.NewService(customerRepository, log)
	subscriptionSvc := subscriptionsService.NewService(subscriptionRepository, log)

	// Инициализируем use cases
	shuffleSeed := cfg.Booking.ShuffleSeed
	if shuffleSeed == 0 {
		shuffleSeed = uint64(time.Now().UnixNano())
	}

	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		catalogRepository,
		customerRepository,
		policySvc,
		txMgr,
		dispatcher,
		scheduling.NewRandShuffler(shuffleSeed),
		location,
		metricsCollector,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		scheduleRepository,
		bookingRepository,
		policySvc,
		location,
		metricsCollector,
		log,
	).WithDefaultDuration(cfg.Booking.DefaultDurationMinutes)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getCustomerBookings := getCustomerBookingsHandler.NewHandler(bookingSvc, log)
	getBookingPolicy := getBookingPolicyHandler.NewHandler(policySvc, log)
	getStaff := getStaffHandler.NewHandler(staffSvc, log)
	getCustomer := getCustomerHandler.NewHandler(customerSvc, log)
	subscribePush := subscribePushHandler.NewHandler(subscriptionSvc, log)
	completeBookings := runMaintenanceHandler.NewHandler("complete", bookingSvc.CompleteElapsed, log)
	sendReminders := runMaintenanceHandler.NewHandler("reminders", bookingSvc.SendReminders, log)

	// Лимит запросов на запись (Redis)
	var writeLimit middleware.Middleware = func(next http.Handler) http.Handler { return next }
	var redisClient *redis.Client

	if cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		limiter := middleware.NewRateLimiter(
			redisClient,
			cfg.RateLimit.Limit,
			time.Duration(cfg.RateLimit.Window)*time.Second,
			cfg.RateLimit.Prefix,
			cfg.RateLimit.FailOpen,
			metricsCollector,
			log,
		)
		if err := limiter.TrustProxies(cfg.RateLimit.TrustedProxies); err != nil {
			log.Fatal("Failed to configure rate limiter: %v", err)
		}
		writeLimit = limiter.Middleware()
		log.Info("Rate limiting enabled (redis=%s limit=%d window=%ds fail_open=%t)",
			cfg.Redis.Addr, cfg.RateLimit.Limit, cfg.RateLimit.Window, cfg.RateLimit.FailOpen)
	}

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(mux.MiddlewareFunc(middleware.RequestID))
	r.Use(mux.MiddlewareFunc(middleware.Recovery(log)))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(mux.MiddlewareFunc(middleware.Metrics(metricsCollector)))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Публичные маршруты ---
	api.HandleFunc("/businesses/{businessId}/availability", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/businesses/{businessId}/policy", getBookingPolicy.Handle).Methods(http.MethodGet)
	api.HandleFunc("/businesses/{businessId}/staff", getStaff.Handle).Methods(http.MethodGet)
	api.HandleFunc("/businesses/{businessId}/customers", getCustomer.Handle).Methods(http.MethodGet)
	api.HandleFunc("/businesses/{businessId}/customers/bookings", getCustomerBookings.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/push/subscriptions", subscribePush.Handle).Methods(http.MethodPost)

	// --- Запись и отмена (с лимитом запросов) ---
	api.Handle("/bookings", writeLimit(http.HandlerFunc(createBooking.Handle))).Methods(http.MethodPost)
	api.Handle("/bookings/{bookingId}/cancel", writeLimit(http.HandlerFunc(cancelBooking.Handle))).Methods(http.MethodPost)

	// --- Служебные маршруты (Bearer CRON_SECRET) ---
	maintenance := api.PathPrefix("/maintenance").Subrouter()
	maintenance.Use(mux.MiddlewareFunc(middleware.CronAuth(cfg.Cron.Secret, log)))
	maintenance.HandleFunc("/complete", completeBookings.Handle).Methods(http.MethodPost)
	maintenance.HandleFunc("/reminders", sendReminders.Handle).Methods(http.MethodPost)

	// Периодические задачи
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	sched := scheduler.New(metricsCollector, log,
		scheduler.Task{
			Name:     "complete_elapsed",
			Interval: time.Duration(cfg.Scheduler.CompletionInterval) * time.Second,
			Run: func(ctx context.Context) error {
				_, err := bookingSvc.CompleteElapsed(ctx)
				return err
			},
		},
		scheduler.Task{
			Name:     "send_reminders",
			Interval: time.Duration(cfg.Scheduler.ReminderInterval) * time.Second,
			Run: func(ctx context.Context) error {
				_, err := bookingSvc.SendReminders(ctx)
				return err
			},
		},
	)
	if cfg.Scheduler.Enabled {
		sched.Start(schedulerCtx)
	}

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

	// Останавливаем периодические задачи
	stopScheduler()
	sched.Wait()

	// Дожидаемся отправки уведомлений из очереди
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Error("Notification queue not drained: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn("Failed to close redis client: %v", err)
		}
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
