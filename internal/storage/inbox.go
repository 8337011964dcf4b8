package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sender identifies the origin of an inbox item.
type Sender struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// InboxItem is one message in the unified inbox. SourceMessageID makes
// ingestion idempotent per tenant.
type InboxItem struct {
	ID              string    `json:"id"`
	TenantID        string    `json:"-"`
	Source          string    `json:"source"`
	Sender          Sender    `json:"sender"`
	Subject         string    `json:"subject"`
	Preview         string    `json:"preview"`
	Timestamp       time.Time `json:"timestamp"`
	IsRead          bool      `json:"is_read"`
	Category        string    `json:"category"`
	Priority        string    `json:"priority"`
	Tags            []string  `json:"tags"`
	SourceMessageID string    `json:"source_message_id"`
}

const inboxColumns = `id, tenant_id, source, sender, subject, preview, timestamp, is_read, category, priority, tags, source_message_id`

// InsertInboxItem stores one inbox item.
func (s *Store) InsertInboxItem(ctx context.Context, item *InboxItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}

	senderJSON, err := json.Marshal(item.Sender)
	if err != nil {
		return fmt.Errorf("failed to marshal sender: %w", err)
	}
	tagsJSON, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO inbox_items (`+inboxColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.TenantID, item.Source, string(senderJSON), item.Subject, item.Preview,
		item.Timestamp, item.IsRead, item.Category, item.Priority, string(tagsJSON),
		item.SourceMessageID)
	if err != nil {
		return fmt.Errorf("failed to insert inbox item: %w", err)
	}
	return nil
}

// FindInboxBySourceMessageID returns the tenant's inbox item with the
// given source message id, or ErrNotFound.
func (s *Store) FindInboxBySourceMessageID(ctx context.Context, tenantID, sourceMessageID string) (*InboxItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+inboxColumns+` FROM inbox_items WHERE tenant_id = ? AND source_message_id = ?`,
		tenantID, sourceMessageID)
	return scanInboxItem(row)
}

// ListInbox returns the tenant's inbox, newest first.
func (s *Store) ListInbox(ctx context.Context, tenantID string) ([]*InboxItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+inboxColumns+` FROM inbox_items WHERE tenant_id = ? ORDER BY timestamp DESC`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}
	defer rows.Close()

	var items []*InboxItem
	for rows.Next() {
		item, err := scanInboxItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanInboxItem(row rowScanner) (*InboxItem, error) {
	var item InboxItem
	var senderJSON, tagsJSON sql.NullString

	err := row.Scan(&item.ID, &item.TenantID, &item.Source, &senderJSON, &item.Subject,
		&item.Preview, &item.Timestamp, &item.IsRead, &item.Category, &item.Priority,
		&tagsJSON, &item.SourceMessageID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan inbox item: %w", err)
	}

	if senderJSON.Valid && senderJSON.String != "" {
		if err := json.Unmarshal([]byte(senderJSON.String), &item.Sender); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sender: %w", err)
		}
	}
	item.Tags = []string{}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &item.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	return &item, nil
}
