package conversation

import (
	"sync"

	"github.com/serenity-spa/booking-agent/internal/domain"
)

// Stage этап диалога бронирования
type Stage string

const (
	StageGreeting          Stage = "greeting"
	StageCollectingService Stage = "collecting_service"
	StageCollectingDate    Stage = "collecting_date"
	StageCollectingTime    Stage = "collecting_time"
	StageAwaitingDeposit   Stage = "awaiting_deposit"
	StageConfirmed         Stage = "confirmed"
)

// State состояние диалога одного клиента.
// Поля Service/Date/Time заполняются по мере извлечения из сообщений.
// Доступ к полям только под mu: обработка сообщения держит мьютекс на весь
// разбор, поэтому сообщения одного клиента обрабатываются строго по одному,
// в том числе наперегонки с вебхуком оплаты.
type State struct {
	mu sync.Mutex

	Stage         Stage
	Service       string
	Date          string
	Time          string
	AppointmentID string
	PaymentRef    string

	// взводятся в текущем сообщении, снимаются при ответе
	justBooked        bool
	assistantFellBack bool
}

// Store потокобезопасное хранилище состояний диалогов по телефону клиента.
// Состояние живет в памяти процесса: перезапуск сбрасывает незавершенные
// диалоги, подтвержденные записи при этом остаются в базе.
type Store struct {
	mu     sync.Mutex
	states map[string]*State
}

// NewStore создает новое хранилище состояний
func NewStore() *Store {
	return &Store{states: make(map[string]*State)}
}

// Get возвращает состояние диалога клиента, создавая новое при первом обращении
func (s *Store) Get(phone string) *State {
	phone = domain.NormalizePhone(phone)

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[phone]
	if !ok {
		state = &State{Stage: StageGreeting}
		s.states[phone] = state
	}
	return state
}

// SetStage переводит диалог клиента на этап stage.
// Используется обработчиком вебхука, чтобы подтвердить оплату депозита.
func (s *Store) SetStage(phone string, stage Stage) {
	state := s.Get(phone)
	state.mu.Lock()
	state.Stage = stage
	state.mu.Unlock()
}

// Reset сбрасывает диалог клиента в начальное состояние
func (s *Store) Reset(phone string) {
	phone = domain.NormalizePhone(phone)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, phone)
}
