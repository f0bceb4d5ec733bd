package usecase

import (
	"fmt"
	"net/mail"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateConversationInput(input ConversationInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Message) == "" {
		errors = append(errors, ValidationError{"message", "is required"})
	} else if len(input.Message) > 4000 {
		errors = append(errors, ValidationError{"message", "must not exceed 4000 characters"})
	}

	if strings.TrimSpace(input.ChannelID) == "" {
		errors = append(errors, ValidationError{"channelId", "is required"})
	}

	if input.Email != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			errors = append(errors, ValidationError{"email", "is invalid"})
		}
	}

	return errors
}
