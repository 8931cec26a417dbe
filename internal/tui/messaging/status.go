package messaging

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/HaiFongPan/ndview/internal/tui/theme"
)

// DefaultTTL is how long a status message stays visible
const DefaultTTL = 4 * time.Second

// MessageType represents different message types for status display
type MessageType int

// Message type constants
const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// StatusManager keeps the footer status line
type StatusManager interface {
	SetMessage(message string, msgType MessageType)
	ClearMessage()
	GetMessage() (string, MessageType, bool)
	RenderMessage() string
	HasMessage() bool
}

// StatusLine implements StatusManager with messages that expire after a TTL.
// Errors stay until replaced.
type StatusLine struct {
	message string
	msgType MessageType
	setAt   time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewStatusManager creates a new status manager instance
func NewStatusManager() *StatusLine {
	return &StatusLine{
		msgType: MessageInfo,
		ttl:     DefaultTTL,
		now:     time.Now,
	}
}

// SetMessage sets a status message with type
func (s *StatusLine) SetMessage(message string, msgType MessageType) {
	s.message = message
	s.msgType = msgType
	s.setAt = s.now()

	logrus.WithFields(logrus.Fields{
		"message": message,
		"type":    int(msgType),
	}).Debug("status message set")
}

// ClearMessage clears the status message
func (s *StatusLine) ClearMessage() {
	s.message = ""
}

// GetMessage returns the current message, type, and whether it is visible
func (s *StatusLine) GetMessage() (string, MessageType, bool) {
	return s.message, s.msgType, s.HasMessage()
}

// HasMessage reports whether a message is visible
func (s *StatusLine) HasMessage() bool {
	if s.message == "" {
		return false
	}
	if s.msgType == MessageError {
		return true
	}
	return s.now().Sub(s.setAt) < s.ttl
}

// RenderMessage renders the current status message with appropriate styling
func (s *StatusLine) RenderMessage() string {
	if !s.HasMessage() {
		return ""
	}

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.GetMessageColor(int(s.msgType)))).
		Bold(true)

	return style.Render(fmt.Sprintf("%s%s", theme.GetMessageIcon(int(s.msgType)), s.message))
}
