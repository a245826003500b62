package domain

import (
	"errors"
	"time"
)

// News is an announcement shown on the site, managed from the back-office.
type News struct {
	ID        string
	Title     LocalizedText
	Body      LocalizedText
	Image     string
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n *News) Validate() error {
	if n.Title.IsEmpty() {
		return errors.New("news title is required")
	}
	return nil
}
