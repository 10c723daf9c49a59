package email

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/auth-service/users"
)

// Message is one email captured by MockClient.
type Message struct {
	Recipient users.Email
	Subject   string
	Content   string
}

var _ Client = (*MockClient)(nil)

// MockClient logs instead of sending and keeps what it was asked to send.
type MockClient struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) SendEmail(_ context.Context, recipient users.Email, subject, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, Message{Recipient: recipient, Subject: subject, Content: content})
	log.Info().Str("recipient", recipient.String()).Str("subject", subject).Msg("mock email client: message not delivered")
	return nil
}

// FailWith makes every following send return err. Pass nil to recover.
func (m *MockClient) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockClient) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.messages...)
}

// Last returns the most recent message sent to recipient.
func (m *MockClient) Last(recipient users.Email) (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Recipient == recipient {
			return m.messages[i], true
		}
	}
	return Message{}, false
}
