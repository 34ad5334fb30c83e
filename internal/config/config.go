package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/serenity-spa/booking-agent/internal/domain"
	"github.com/serenity-spa/booking-agent/pkg/types"
)

// Config полная конфигурация сервиса, загружается из config.toml один раз на старте
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Logs      LogsConfig      `toml:"logs"`
	Database  DatabaseConfig  `toml:"database"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Stripe    StripeConfig    `toml:"stripe"`
	Assistant AssistantConfig `toml:"assistant"`
	Business  BusinessConfig  `toml:"business"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int    `toml:"http_port"`
	ReadTimeout     int    `toml:"read_timeout"`
	WriteTimeout    int    `toml:"write_timeout"`
	IdleTimeout     int    `toml:"idle_timeout"`
	ShutdownTimeout int    `toml:"shutdown_timeout"`
	AdminToken      string `toml:"admin_token"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// StripeConfig настройки платежей Stripe
type StripeConfig struct {
	SecretKey        string `toml:"secret_key"`
	WebhookSecret    string `toml:"webhook_secret"`
	SuccessURL       string `toml:"success_url"`
	CancelURL        string `toml:"cancel_url"`
	WebhookTolerance int    `toml:"webhook_tolerance"` // seconds
}

// Enabled возвращает true, если платежи настроены
func (s StripeConfig) Enabled() bool {
	return s.SecretKey != ""
}

// AssistantConfig настройки языковой модели для свободных ответов
type AssistantConfig struct {
	Enabled bool   `toml:"enabled"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout int    `toml:"timeout"` // seconds
}

// BusinessConfig бизнес-конфигурация студии в том виде, как она лежит в toml
type BusinessConfig struct {
	Name     string                   `toml:"name"`
	Hours    map[string]DayHours      `toml:"hours"`
	Services map[string]ServiceConfig `toml:"services"`
	Policy   PolicyConfig             `toml:"policy"`
}

// DayHours часы работы на один день недели
type DayHours struct {
	Closed bool   `toml:"closed"`
	Open   string `toml:"open"`
	Close  string `toml:"close"`
}

// ServiceConfig одна услуга каталога
type ServiceConfig struct {
	Name            string  `toml:"name"`
	DurationMinutes int     `toml:"duration_minutes"`
	Price           float64 `toml:"price"`
}

// PolicyConfig политика бронирования и депозитов
type PolicyConfig struct {
	SlotDurationMinutes     int      `toml:"slot_duration_minutes"`
	MinAdvanceHours         int      `toml:"min_advance_hours"`
	MaxAdvanceDays          int      `toml:"max_advance_days"`
	DepositEnabled          bool     `toml:"deposit_enabled"`
	DepositType             string   `toml:"deposit_type"` // "fixed" | "percentage"
	DepositFixedAmount      float64  `toml:"deposit_fixed_amount"`
	DepositPercentage       float64  `toml:"deposit_percentage"`
	DepositRequiredServices []string `toml:"deposit_required_services"`
}

// Load читает и валидирует конфигурацию из toml-файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "booking-agent"
	}
	if cfg.Stripe.WebhookTolerance == 0 {
		cfg.Stripe.WebhookTolerance = 300
	}
	if cfg.Assistant.Timeout == 0 {
		cfg.Assistant.Timeout = 15
	}
	if cfg.Business.Policy.SlotDurationMinutes == 0 {
		cfg.Business.Policy.SlotDurationMinutes = domain.DefaultSlotDurationMinutes
	}
	if cfg.Business.Policy.MinAdvanceHours == 0 {
		cfg.Business.Policy.MinAdvanceHours = domain.DefaultMinAdvanceHours
	}
	if cfg.Business.Policy.MaxAdvanceDays == 0 {
		cfg.Business.Policy.MaxAdvanceDays = domain.DefaultMaxAdvanceDays
	}
	if cfg.Business.Policy.DepositType == "" {
		cfg.Business.Policy.DepositType = string(domain.DepositTypePercentage)
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if len(cfg.Business.Services) == 0 {
		return fmt.Errorf("config: business.services must not be empty")
	}
	for key, svc := range cfg.Business.Services {
		if svc.DurationMinutes <= 0 {
			return fmt.Errorf("config: service %q: duration_minutes must be positive", key)
		}
		if svc.Price < 0 {
			return fmt.Errorf("config: service %q: price must not be negative", key)
		}
	}

	switch cfg.Business.Policy.DepositType {
	case string(domain.DepositTypeFixed), string(domain.DepositTypePercentage):
	default:
		return fmt.Errorf("config: business.policy.deposit_type must be %q or %q",
			domain.DepositTypeFixed, domain.DepositTypePercentage)
	}

	for _, key := range cfg.Business.Policy.DepositRequiredServices {
		if _, ok := cfg.Business.Services[key]; !ok {
			return fmt.Errorf("config: deposit_required_services references unknown service %q", key)
		}
	}

	if _, err := cfg.Business.ToDomain(); err != nil {
		return err
	}
	return nil
}

// ToDomain конвертирует toml-представление бизнес-конфигурации в доменную модель
func (b BusinessConfig) ToDomain() (*domain.BusinessConfig, error) {
	week := domain.WeekSchedule{
		Monday:    domain.DayHours{Closed: true},
		Tuesday:   domain.DayHours{Closed: true},
		Wednesday: domain.DayHours{Closed: true},
		Thursday:  domain.DayHours{Closed: true},
		Friday:    domain.DayHours{Closed: true},
		Saturday:  domain.DayHours{Closed: true},
		Sunday:    domain.DayHours{Closed: true},
	}

	setters := map[string]*domain.DayHours{
		"monday":    &week.Monday,
		"tuesday":   &week.Tuesday,
		"wednesday": &week.Wednesday,
		"thursday":  &week.Thursday,
		"friday":    &week.Friday,
		"saturday":  &week.Saturday,
		"sunday":    &week.Sunday,
	}

	for day, hours := range b.Hours {
		target, ok := setters[day]
		if !ok {
			return nil, fmt.Errorf("config: business.hours: unknown weekday %q", day)
		}
		if hours.Closed {
			*target = domain.DayHours{Closed: true}
			continue
		}

		open, err := types.NewTimeStringFromString(hours.Open)
		if err != nil {
			return nil, fmt.Errorf("config: business.hours.%s.open: %w", day, err)
		}
		closeTime, err := types.NewTimeStringFromString(hours.Close)
		if err != nil {
			return nil, fmt.Errorf("config: business.hours.%s.close: %w", day, err)
		}
		if !open.IsBefore(closeTime) {
			return nil, fmt.Errorf("config: business.hours.%s: open must be before close", day)
		}
		*target = domain.DayHours{Open: open, Close: closeTime}
	}

	services := make(map[string]domain.ServiceInfo, len(b.Services))
	for key, svc := range b.Services {
		services[key] = domain.ServiceInfo{
			Key:             key,
			Name:            svc.Name,
			DurationMinutes: svc.DurationMinutes,
			Price:           svc.Price,
		}
	}

	return &domain.BusinessConfig{
		Name:     b.Name,
		Hours:    week,
		Services: services,
		Policy: domain.BookingPolicy{
			SlotDurationMinutes:     b.Policy.SlotDurationMinutes,
			MinAdvanceHours:         b.Policy.MinAdvanceHours,
			MaxAdvanceDays:          b.Policy.MaxAdvanceDays,
			DepositEnabled:          b.Policy.DepositEnabled,
			DepositType:             domain.DepositType(b.Policy.DepositType),
			DepositFixedAmount:      b.Policy.DepositFixedAmount,
			DepositPercentage:       b.Policy.DepositPercentage,
			DepositRequiredServices: b.Policy.DepositRequiredServices,
		},
	}, nil
}
