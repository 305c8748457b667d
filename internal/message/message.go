package message

import (
	"fmt"
	"strings"

	"github.com/classterra/school-platform-backend/internal/utils"
)

type Message struct {
	ToEmail string
	Title   string
	Body    string
}

// ValidateFor validates if the message object is valid for the given messengerType.
func (m *Message) ValidateFor(messengerType MessengerType) error {
	if messengerType.IsEmail() {
		if err := utils.ValidateEmail(m.ToEmail); err != nil {
			return fmt.Errorf("invalid message: %w", err)
		}

		if strings.Trim(m.Title, " ") == "" {
			return fmt.Errorf("title is empty")
		}
	}

	if strings.Trim(m.Body, " ") == "" {
		return fmt.Errorf("message body is empty")
	}

	return nil
}
