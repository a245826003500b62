package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

type contactRepository struct {
	db DB
}

func NewContactRepository(db DB) interfaces.ContactRepository {
	return &contactRepository{db: db}
}

// The contact info is a singleton row keyed by a fixed id.
const contactRowID = "main"

func (r *contactRepository) Get(ctx context.Context) (*domain.ContactInfo, error) {
	query := `SELECT address_en, address_sv, phone, email, opening_hours, updated_at
		FROM contacts WHERE id = $1`

	var (
		info  domain.ContactInfo
		hours []byte
	)
	err := r.db.QueryRow(ctx, query, contactRowID).Scan(
		&info.Address.English, &info.Address.Swedish, &info.Phone, &info.Email, &hours, &info.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("contact info not found: %w", err)
	}

	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &info.OpeningHours); err != nil {
			return nil, fmt.Errorf("failed to decode opening hours: %w", err)
		}
	}
	return &info, nil
}

func (r *contactRepository) Put(ctx context.Context, info *domain.ContactInfo) error {
	hours, err := json.Marshal(info.OpeningHours)
	if err != nil {
		return fmt.Errorf("failed to encode opening hours: %w", err)
	}

	query := `
		INSERT INTO contacts (id, address_en, address_sv, phone, email, opening_hours, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET address_en = $2, address_sv = $3, phone = $4, email = $5,
		              opening_hours = $6, updated_at = $7
	`
	_, err = r.db.Exec(ctx, query, contactRowID,
		info.Address.English, info.Address.Swedish, info.Phone, info.Email, hours, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store contact info: %w", err)
	}
	return nil
}

func (r *contactRepository) CreateMessage(ctx context.Context, msg *domain.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, msg.ID, msg.Name, msg.Email, msg.Message, msg.Read, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contact message: %w", err)
	}
	return nil
}

func (r *contactRepository) ListMessages(ctx context.Context) ([]*domain.ContactMessage, error) {
	query := `SELECT id, name, email, message, read, created_at
		FROM contact_messages ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.ContactMessage
	for rows.Next() {
		var m domain.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact message: %w", err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, nil
}

func (r *contactRepository) MarkMessageRead(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `UPDATE contact_messages SET read = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}
