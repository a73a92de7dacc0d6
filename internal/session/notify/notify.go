// Package notify delivers one-time codes to the contact on file.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"provet/pkg/contact"
)

// LogSender records that a code was dispatched without printing the code or
// the full contact. It stands in for a real SMS or email gateway in dev.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendCode(ctx context.Context, recipient, code string) error {
	s.logger.InfoContext(ctx, "one-time code dispatched",
		"recipient", contact.Mask(recipient),
		"code_length", len(code),
	)
	return nil
}

// MemorySender captures dispatched codes for tests.
type MemorySender struct {
	mu    sync.Mutex
	sent  []SentCode
	fail  error
}

// SentCode is one captured dispatch.
type SentCode struct {
	Recipient string
	Code      string
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

// FailWith makes every subsequent SendCode return err.
func (s *MemorySender) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *MemorySender) SendCode(_ context.Context, recipient, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.sent = append(s.sent, SentCode{Recipient: recipient, Code: code})
	return nil
}

// Sent returns a copy of every captured dispatch.
func (s *MemorySender) Sent() []SentCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SentCode, len(s.sent))
	copy(out, s.sent)
	return out
}
