package nlu

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/serenity-spa/booking-agent/internal/domain"
)

// Intent распознанное намерение пользователя
type Intent string

const (
	IntentBook              Intent = "book"
	IntentReschedule        Intent = "reschedule"
	IntentCancel            Intent = "cancel"
	IntentCheckAvailability Intent = "check_availability"
	IntentServices          Intent = "services"
	IntentPricing           Intent = "pricing"
	IntentHours             Intent = "hours"
	IntentDeposit           Intent = "deposit"
	IntentHelp              Intent = "help"
	IntentGreeting          Intent = "greeting"
)

// intentKeywords порядок перебора фиксирован: приветствие проверяется первым,
// остальные намерения в объявленном порядке. Ключевые слова ищутся как подстроки.
var intentOrder = []Intent{
	IntentBook,
	IntentReschedule,
	IntentCancel,
	IntentCheckAvailability,
	IntentServices,
	IntentPricing,
	IntentHours,
	IntentDeposit,
	IntentHelp,
}

var intentKeywords = map[Intent][]string{
	IntentBook:              {"book", "schedule", "appointment", "reserve", "make a booking"},
	IntentReschedule:        {"reschedule", "change", "move", "different time"},
	IntentCancel:            {"cancel", "not coming", "won't make it"},
	IntentCheckAvailability: {"available", "what times", "when are you open", "slots"},
	IntentServices:          {"services", "what do you offer", "types of massage", "menu"},
	IntentPricing:           {"price", "how much", "cost", "rates"},
	IntentHours:             {"hours", "open", "when are you open", "business hours"},
	IntentDeposit:           {"deposit", "payment", "pay", "secure"},
	IntentHelp:              {"help", "what can you do", "options", "menu"},
	IntentGreeting:          {"hi", "hello", "hey", "good morning", "good afternoon"},
}

var serviceKeywords = map[string][]string{
	"swedish":      {"swedish", "relaxing", "gentle"},
	"deep_tissue":  {"deep tissue", "deep", "intense", "firm"},
	"hot_stone":    {"hot stone", "stones", "heat"},
	"aromatherapy": {"aromatherapy", "aroma", "scent", "essential oils"},
	"sports":       {"sports", "athlete", "injury", "recovery"},
	"couples":      {"couples", "together", "romantic", "two people"},
}

// serviceOrder детерминированный порядок проверки ключевых слов услуг
var serviceOrder = []string{"swedish", "deep_tissue", "hot_stone", "aromatherapy", "sports", "couples"}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var (
	numericDateRe = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})`)
	monthDayRe    = regexp.MustCompile(`(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?`)
	clockTimeRe   = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(am|pm|a\.m\.|p\.m\.)?`)
	hourOnlyRe    = regexp.MustCompile(`(\d{1,2})\s*(am|pm|a\.m\.|p\.m\.)`)
	emailRe       = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w+`)
)

var nameRes = []*regexp.Regexp{
	regexp.MustCompile(`my name is\s+(\w+)`),
	regexp.MustCompile(`i'm\s+(\w+)`),
	regexp.MustCompile(`i am\s+(\w+)`),
	regexp.MustCompile(`name's\s+(\w+)`),
}

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// TimeProvider источник текущего времени для разрешения относительных дат
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный источник времени
type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Extracted данные, извлеченные из одного сообщения.
// Пустая строка означает, что соответствующее поле не найдено.
type Extracted struct {
	Service string
	Date    string
	Time    string
	Name    string
	Email   string
}

// Parser разбирает свободный текст клиента на намерение и структурированные данные,
// на основе словарей ключевых слов. Работает без внешних вызовов.
type Parser struct {
	timeProvider TimeProvider
}

// NewParser создает новый парсер сообщений
func NewParser() *Parser {
	return &Parser{timeProvider: &RealTimeProvider{}}
}

// ClassifyIntent определяет намерение сообщения.
// Приветствие имеет приоритет; без совпадений намерение по умолчанию "book".
func (p *Parser) ClassifyIntent(message string) Intent {
	lower := strings.ToLower(message)

	for _, keyword := range intentKeywords[IntentGreeting] {
		if strings.Contains(lower, keyword) {
			return IntentGreeting
		}
	}

	for _, intent := range intentOrder {
		for _, keyword := range intentKeywords[intent] {
			if strings.Contains(lower, keyword) {
				return intent
			}
		}
	}

	return IntentBook
}

// Extract извлекает все детали бронирования из сообщения
func (p *Parser) Extract(message string) Extracted {
	return Extracted{
		Service: p.ExtractService(message),
		Date:    p.ExtractDate(message),
		Time:    p.ExtractTime(message),
		Name:    p.ExtractName(message),
		Email:   p.ExtractEmail(message),
	}
}

// ExtractService находит ключ услуги по ключевым словам, "" если не найдено
func (p *Parser) ExtractService(message string) string {
	lower := strings.ToLower(message)

	for _, service := range serviceOrder {
		for _, keyword := range serviceKeywords[service] {
			if strings.Contains(lower, keyword) {
				return service
			}
		}
	}
	return ""
}

// ExtractDate находит дату в сообщении и возвращает её в формате YYYY-MM-DD.
// Понимает относительные даты (today, tomorrow, next week), дни недели
// (всегда следующий такой день, не сегодня), MM/DD/YYYY и "January 15"
// (прошедшая в этом году дата переносится на следующий год).
func (p *Parser) ExtractDate(message string) string {
	lower := strings.ToLower(message)
	now := p.timeProvider.Now()

	switch {
	case strings.Contains(lower, "today"):
		return now.Format(domain.DateFormat)
	case strings.Contains(lower, "tomorrow"):
		return now.AddDate(0, 0, 1).Format(domain.DateFormat)
	case strings.Contains(lower, "next week"):
		return now.AddDate(0, 0, 7).Format(domain.DateFormat)
	}

	for i, day := range weekdays {
		if !strings.Contains(lower, day) {
			continue
		}
		// weekdays начинается с понедельника, time.Weekday с воскресенья
		current := (int(now.Weekday()) + 6) % 7
		ahead := i - current
		if ahead <= 0 {
			ahead += 7
		}
		return now.AddDate(0, 0, ahead).Format(domain.DateFormat)
	}

	if m := numericDateRe.FindStringSubmatch(message); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if date, ok := validDate(year, month, day); ok {
			return date.Format(domain.DateFormat)
		}
	}

	if m := monthDayRe.FindStringSubmatch(lower); m != nil {
		month := monthsByName[m[1]]
		day, _ := strconv.Atoi(m[2])
		if date, ok := validDate(now.Year(), int(month), day); ok {
			if date.Before(now) {
				date, _ = validDate(now.Year()+1, int(month), day)
			}
			return date.Format(domain.DateFormat)
		}
	}

	return ""
}

// ExtractTime находит время в сообщении и возвращает его в формате HH:MM.
// Понимает "14:30", "2:30 pm" и "2pm"; часы без периода трактуются как 24-часовые.
func (p *Parser) ExtractTime(message string) string {
	lower := strings.ToLower(message)

	if m := clockTimeRe.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		hour = applyPeriod(hour, m[3])
		if hour < 24 && minute < 60 {
			return fmt.Sprintf("%02d:%02d", hour, minute)
		}
	}

	if m := hourOnlyRe.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		hour = applyPeriod(hour, m[2])
		if hour < 24 {
			return fmt.Sprintf("%02d:00", hour)
		}
	}

	return ""
}

// ExtractName находит имя по шаблонам вида "my name is ..." и "I'm ...".
// Если за именем следует еще одно слово из букв, оно считается фамилией.
func (p *Parser) ExtractName(message string) string {
	lower := strings.ToLower(message)

	for _, re := range nameRes {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		first := capitalize(m[1])

		idx := strings.Index(lower, strings.ToLower(first))
		if idx >= 0 {
			rest := strings.TrimSpace(message[idx+len(first):])
			if rest != "" && isLetter(rune(rest[0])) {
				return first + " " + capitalize(strings.Fields(rest)[0])
			}
		}
		return first
	}
	return ""
}

// ExtractEmail находит email-адрес в сообщении, "" если не найден
func (p *Parser) ExtractEmail(message string) string {
	return emailRe.FindString(message)
}

func applyPeriod(hour int, period string) int {
	switch {
	case strings.Contains(period, "pm") || strings.Contains(period, "p.m"):
		if hour != 12 {
			hour += 12
		}
	case strings.Contains(period, "am") || strings.Contains(period, "a.m"):
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

func validDate(year, month, day int) (time.Time, bool) {
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(date.Month()) != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
