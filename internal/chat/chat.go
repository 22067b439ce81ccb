// Package chat holds the conversation between a visitor and one specimen.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mwiater/dinomuseum/internal/logging"
)

// Fallback is shown in place of the dinosaur's answer when the backend fails.
const Fallback = "<b>¡GRRR!</b> Mis pensamientos se nublan..."

// ErrEmptyQuestion is returned by Send when the question is blank after trimming.
var ErrEmptyQuestion = errors.New("chat: empty question")

// Sender identifies who wrote a message.
type Sender string

const (
	SenderDino Sender = "bot"
	SenderUser Sender = "user"
)

// Message is one entry of the conversation. Dinosaur content is trusted HTML
// from the backend; user content is plain text.
type Message struct {
	Sender  Sender    `json:"sender"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Backend answers a visitor's question in the voice of the specimen described
// by dinoContext.
type Backend interface {
	Ask(ctx context.Context, dinoContext, question string) (string, error)
}

// Session is an open chat with one specimen.
type Session struct {
	ID        string
	DinoName  string
	Context   string
	AvatarURL string

	mu      sync.Mutex
	history []Message
	now     func() time.Time
}

// Greeting returns the opening line the dinosaur says.
func Greeting(name string) string {
	return fmt.Sprintf("¡Hola! Soy %s. ¿Qué te gustaría saber sobre mí?", name)
}

// NewSession opens a chat with the named specimen. dinoContext is the full
// description the backend answers from; avatarURL is the specimen's image.
func NewSession(name, dinoContext, avatarURL string) *Session {
	s := &Session{
		DinoName:  name,
		Context:   dinoContext,
		AvatarURL: avatarURL,
		now:       time.Now,
	}
	s.history = []Message{{Sender: SenderDino, Content: Greeting(name), At: s.now()}}
	return s
}

// Title is the chat window heading.
func (s *Session) Title() string {
	return "Hablando con " + s.DinoName
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) append(sender Sender, content string) {
	s.mu.Lock()
	s.history = append(s.history, Message{Sender: sender, Content: content, At: s.now()})
	s.mu.Unlock()
}

// Send asks backend the question and records both sides of the exchange. On a
// backend failure the fallback line is recorded and returned together with the
// error, so callers can always show an answer.
func (s *Session) Send(ctx context.Context, backend Backend, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	s.append(SenderUser, question)

	answer, err := backend.Ask(ctx, s.Context, question)
	if err != nil {
		logging.LogEvent("chat with %s failed: %v", s.DinoName, err)
		s.append(SenderDino, Fallback)
		return Fallback, err
	}
	s.append(SenderDino, answer)
	return answer, nil
}
