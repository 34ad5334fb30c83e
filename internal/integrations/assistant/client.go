package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/serenity-spa/booking-agent/internal/domain"
)

const (
	defaultModel   = "models/gemini-1.5-pro"
	defaultTimeout = 15 * time.Second
	maxHistory     = 10
)

// Message одна реплика диалога для контекста модели
type Message struct {
	Role    string
	Content string
}

// Client генеративный ассистент поверх Gemini.
// Хранит короткую историю диалога по телефону клиента, чтобы модель
// видела контекст последних реплик. История обрезается до maxHistory сообщений.
type Client struct {
	model   *genai.GenerativeModel
	timeout time.Duration
	log     Logger

	mu      sync.Mutex
	history map[string][]Message
}

// NewClient создает нового клиента ассистента.
// При пустом ключе возвращает (nil, nil): вызывающий код трактует nil-клиента
// как выключенного ассистента и работает только на правилах.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration, log Logger) (*Client, error) {
	if apiKey == "" {
		return nil, nil
	}
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	genaiClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: create gemini client: %v", ErrGeneration, err)
	}

	return &Client{
		model:   genaiClient.GenerativeModel(model),
		timeout: timeout,
		log:     log,
		history: make(map[string][]Message),
	}, nil
}

// GenerateReply генерирует ответ на сообщение клиента с учетом бизнес-контекста
// и истории диалога. Ошибка означает, что вызывающий код должен ответить
// шаблонной репликой.
func (c *Client) GenerateReply(ctx context.Context, phone, userMessage string, cfg *domain.BusinessConfig, stage string) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := c.buildPrompt(phone, userMessage, cfg, stage)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: empty response", ErrGeneration)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}

	reply := strings.TrimSpace(sb.String())
	if reply == "" {
		return "", fmt.Errorf("%w: no text parts in response", ErrGeneration)
	}

	c.remember(phone, userMessage, reply)
	return reply, nil
}

// ClearHistory сбрасывает историю диалога клиента
func (c *Client) ClearHistory(phone string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.history, phone)
}

func (c *Client) buildPrompt(phone, userMessage string, cfg *domain.BusinessConfig, stage string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are a helpful booking assistant for %s. Your role is to assist clients with:\n\n", cfg.Name))
	sb.WriteString("1. Booking massage appointments\n")
	sb.WriteString("2. Providing information about services and pricing\n")
	sb.WriteString("3. Checking availability\n")
	sb.WriteString("4. Rescheduling or cancelling appointments\n")
	sb.WriteString("5. Answering questions about policies\n\n")
	sb.WriteString(fmt.Sprintf("Current conversation stage: %s\n\n", stage))

	sb.WriteString("Available services:\n")
	for _, svc := range cfg.ServiceList() {
		sb.WriteString(fmt.Sprintf("- %s: %d min - $%.0f\n", svc.Name, svc.DurationMinutes, svc.Price))
	}

	sb.WriteString("\nGuidelines:\n")
	sb.WriteString("- Be warm, welcoming, and professional\n")
	sb.WriteString("- Ask clarifying questions when needed\n")
	sb.WriteString("- Keep responses concise but informative\n")
	sb.WriteString("- Guide clients through the booking process step by step\n")
	sb.WriteString("- If you cannot help, suggest contacting the business directly\n")
	sb.WriteString("- Never make up information about availability or pricing\n\n")

	c.mu.Lock()
	for _, msg := range c.history[phone] {
		sb.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
	}
	c.mu.Unlock()

	sb.WriteString(fmt.Sprintf("user: %s\nassistant:", userMessage))
	return sb.String()
}

func (c *Client) remember(phone, userMessage, reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	history := append(c.history[phone],
		Message{Role: "user", Content: userMessage},
		Message{Role: "assistant", Content: reply},
	)
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	c.history[phone] = history
}
