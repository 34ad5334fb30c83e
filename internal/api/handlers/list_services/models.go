package list_services

import (
	"github.com/serenity-spa/booking-agent/internal/domain"
)

// ServicesResponse HTTP response model
type ServicesResponse struct {
	Services []ServiceEntry `json:"services"`
}

// ServiceEntry одна позиция каталога услуг
type ServiceEntry struct {
	Key             string  `json:"key"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	DepositRequired bool    `json:"deposit_required"`
}

// FromCatalog конвертирует каталог услуг в HTTP response
func FromCatalog(cfg *domain.BusinessConfig) *ServicesResponse {
	list := cfg.ServiceList()
	services := make([]ServiceEntry, 0, len(list))
	for _, svc := range list {
		services = append(services, ServiceEntry{
			Key:             svc.Key,
			Name:            svc.Name,
			DurationMinutes: svc.DurationMinutes,
			Price:           svc.Price,
			DepositRequired: cfg.Policy.DepositEnabled && cfg.Policy.DepositRequiredFor(svc.Key),
		})
	}
	return &ServicesResponse{Services: services}
}
