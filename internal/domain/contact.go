package domain

import (
	"errors"
	"strings"
	"time"
)

// ContactInfo is the restaurant's public contact record. There is exactly
// one of these; updates replace it in place.
type ContactInfo struct {
	Address      LocalizedText
	Phone        string
	Email        string
	OpeningHours []OpeningHours
	UpdatedAt    time.Time
}

// OpeningHours is one weekday's opening window, closed when Open is empty.
type OpeningHours struct {
	DayOfWeek int    `json:"day_of_week"` // 0=Sunday .. 6=Saturday
	Open      string `json:"open"`        // "HH:MM"
	Close     string `json:"close"`       // "HH:MM"
}

// ContactMessage is a message sent through the public contact form.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Message   string
	Read      bool
	CreatedAt time.Time
}

func (m *ContactMessage) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("contact message name is required")
	}
	if !strings.Contains(m.Email, "@") {
		return errors.New("contact message email is invalid")
	}
	if strings.TrimSpace(m.Message) == "" {
		return errors.New("contact message body is required")
	}
	return nil
}
