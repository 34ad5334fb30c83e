package process_message

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenity-spa/booking-agent/internal/nlu"
	"github.com/serenity-spa/booking-agent/internal/service/conversation"
)

type fakeAgent struct {
	reply *conversation.Reply
	err   error

	gotPhone   string
	gotMessage string
}

func (f *fakeAgent) ProcessMessage(_ context.Context, phone, message string) (*conversation.Reply, error) {
	f.gotPhone = phone
	f.gotMessage = message
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

type fakeMetrics struct {
	intents   []string
	bookings  int
	fallbacks int
}

func (f *fakeMetrics) IncMessageProcessed(intent string) { f.intents = append(f.intents, intent) }
func (f *fakeMetrics) IncBookingCreated()                { f.bookings++ }
func (f *fakeMetrics) IncAssistantFallback()             { f.fallbacks++ }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestExecute_Success(t *testing.T) {
	agent := &fakeAgent{reply: &conversation.Reply{
		Text:   "What service would you like?",
		Intent: nlu.IntentBook,
		Stage:  conversation.StageCollectingService,
	}}
	metrics := &fakeMetrics{}
	uc := NewUseCase(agent, metrics, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{
		Phone:   "555-123-4567",
		Message: "I want to book a massage",
	})
	require.NoError(t, err)

	assert.Equal(t, "What service would you like?", resp.Reply)
	assert.Equal(t, string(nlu.IntentBook), resp.Intent)
	assert.Equal(t, string(conversation.StageCollectingService), resp.Stage)
	assert.Equal(t, "555-123-4567", agent.gotPhone)
	assert.Equal(t, []string{string(nlu.IntentBook)}, metrics.intents)
	assert.Zero(t, metrics.bookings)
}

func TestExecute_CountsBookings(t *testing.T) {
	agent := &fakeAgent{reply: &conversation.Reply{
		Text:   "confirmed",
		Intent: nlu.IntentBook,
		Stage:  conversation.StageConfirmed,
		Booked: true,
	}}
	metrics := &fakeMetrics{}
	uc := NewUseCase(agent, metrics, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{Phone: "5551234567", Message: "2 pm"})
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.bookings)
}

func TestExecute_CountsAssistantFallbacks(t *testing.T) {
	agent := &fakeAgent{reply: &conversation.Reply{
		Text:              "I'm here to help!",
		Intent:            nlu.IntentBook,
		Stage:             conversation.StageGreeting,
		AssistantFallback: true,
	}}
	metrics := &fakeMetrics{}
	uc := NewUseCase(agent, metrics, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{Phone: "5551234567", Message: "what's the weather"})
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.fallbacks)
	assert.Zero(t, metrics.bookings)
}

func TestExecute_NilMetrics(t *testing.T) {
	agent := &fakeAgent{reply: &conversation.Reply{Text: "hi", Stage: conversation.StageGreeting}}
	uc := NewUseCase(agent, nil, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{Phone: "5551234567", Message: "hello"})
	require.NoError(t, err)
}

func TestExecute_Validation(t *testing.T) {
	uc := NewUseCase(&fakeAgent{}, nil, nopLogger{})

	tests := []struct {
		name string
		req  *Request
	}{
		{"nil request", nil},
		{"empty phone", &Request{Message: "hello"}},
		{"empty message", &Request{Phone: "5551234567"}},
		{"blank message", &Request{Phone: "5551234567", Message: "   "}},
		{"too long message", &Request{Phone: "5551234567", Message: strings.Repeat("a", maxMessageLength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_AgentFailure(t *testing.T) {
	agent := &fakeAgent{err: errors.New("storage down")}
	uc := NewUseCase(agent, nil, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{Phone: "5551234567", Message: "hello"})
	assert.ErrorIs(t, err, ErrInternal)
}
