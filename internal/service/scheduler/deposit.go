package scheduler

import (
	"math"

	"github.com/serenity-spa/booking-agent/internal/domain"
)

// Deposit возвращает сумму депозита для услуги.
// 0, если депозиты выключены глобально или услуга их не требует.
// Процентный депозит округляется до 2 знаков по правилу round-half-up
// (обычное денежное округление).
func (s *Service) Deposit(serviceKey string, price float64) float64 {
	policy := s.cfg.Policy

	if !policy.DepositEnabled {
		return 0
	}
	if !policy.DepositRequiredFor(serviceKey) {
		return 0
	}

	if policy.DepositType == domain.DepositTypeFixed {
		return policy.DepositFixedAmount
	}
	return roundHalfUp(price * policy.DepositPercentage)
}

// roundHalfUp округляет до 2 знаков, 0.005 -> 0.01
func roundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
