package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// Document is a tenant-scoped indexed document. Content is chunked on
// blank lines into doc_chunks for keyword search.
type Document struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"-"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// DocChunk is one searchable section of a document.
type DocChunk struct {
	DocumentID string `json:"document_id" db:"document_id"`
	Section    string `json:"section" db:"section"`
	Content    string `json:"content" db:"content"`
}

// DocumentUpdate describes a partial document update.
type DocumentUpdate struct {
	Title    *string
	Content  *string
	Metadata map[string]any
}

// Empty reports whether the update would change nothing.
func (u DocumentUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Metadata == nil
}

const documentColumns = `id, tenant_id, title, content, metadata, created_at, updated_at`

// CreateDocument inserts a document and indexes its chunks.
func (s *Store) CreateDocument(ctx context.Context, doc *Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}

	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (`+documentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.TenantID, doc.Title, doc.Content, string(metadataJSON),
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return s.ReplaceDocChunks(ctx, doc.TenantID, doc.ID, doc.Content)
}

// GetDocument fetches one document scoped to the tenant.
func (s *Store) GetDocument(ctx context.Context, tenantID, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE tenant_id = ? AND id = ?`, tenantID, id)
	return scanDocument(row)
}

// ListDocuments returns the tenant's documents, newest first, with an
// optional case-insensitive title filter.
func (s *Store) ListDocuments(ctx context.Context, tenantID, titleQuery string, limit int) ([]*Document, error) {
	builder := s.sb.Select(strings.Split(documentColumns, ", ")...).
		From("documents").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))
	if titleQuery != "" {
		builder = builder.Where(sq.Like{"LOWER(title)": "%" + strings.ToLower(titleQuery) + "%"})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build document list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// UpdateDocument applies a partial update and reindexes chunks when the
// content changed. Returns ErrNotFound when the tenant owns no such
// document.
func (s *Store) UpdateDocument(ctx context.Context, tenantID, id string, up DocumentUpdate) (*Document, error) {
	builder := s.sb.Update("documents").
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"tenant_id": tenantID, "id": id})

	if up.Title != nil {
		builder = builder.Set("title", *up.Title)
	}
	if up.Content != nil {
		builder = builder.Set("content", *up.Content)
	}
	if up.Metadata != nil {
		metadataJSON, err := json.Marshal(up.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		builder = builder.Set("metadata", string(metadataJSON))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build document update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	if up.Content != nil {
		if err := s.ReplaceDocChunks(ctx, tenantID, id, *up.Content); err != nil {
			return nil, err
		}
	}

	return s.GetDocument(ctx, tenantID, id)
}

// DeleteDocument removes the tenant's document and its chunks.
func (s *Store) DeleteDocument(ctx context.Context, tenantID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	// Cascade covers chunks when foreign keys are on; delete explicitly
	// so a missed pragma cannot leak chunks across documents.
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM doc_chunks WHERE tenant_id = ? AND document_id = ?`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete doc chunks: %w", err)
	}
	return nil
}

// ReplaceDocChunks drops and rebuilds a document's chunks by splitting
// content on blank lines.
func (s *Store) ReplaceDocChunks(ctx context.Context, tenantID, documentID, content string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM doc_chunks WHERE tenant_id = ? AND document_id = ?`, tenantID, documentID)
	if err != nil {
		return fmt.Errorf("failed to clear doc chunks: %w", err)
	}

	for i, chunk := range SplitChunks(content) {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO doc_chunks (tenant_id, document_id, section, content) VALUES (?, ?, ?, ?)`,
			tenantID, documentID, fmt.Sprintf("p%d", i+1), chunk)
		if err != nil {
			return fmt.Errorf("failed to insert doc chunk: %w", err)
		}
	}
	return nil
}

// CountDocChunks returns how many chunks a document currently has.
func (s *Store) CountDocChunks(ctx context.Context, tenantID, documentID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM doc_chunks WHERE tenant_id = ? AND document_id = ?`,
		tenantID, documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count doc chunks: %w", err)
	}
	return count, nil
}

// SearchChunks returns up to limit chunks matching the query substring,
// scoped to the tenant.
func (s *Store) SearchChunks(ctx context.Context, tenantID, query string, limit int) ([]DocChunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document_id, section, content FROM doc_chunks
		 WHERE tenant_id = ? AND LOWER(content) LIKE ? LIMIT ?`,
		tenantID, "%"+strings.ToLower(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search doc chunks: %w", err)
	}
	defer rows.Close()

	results := []DocChunk{}
	for rows.Next() {
		var chunk DocChunk
		if err := rows.Scan(&chunk.DocumentID, &chunk.Section, &chunk.Content); err != nil {
			return nil, fmt.Errorf("failed to scan doc chunk: %w", err)
		}
		results = append(results, chunk)
	}
	return results, rows.Err()
}

// SplitChunks splits document content into non-empty paragraphs on
// blank lines.
func SplitChunks(content string) []string {
	var chunks []string
	for _, part := range strings.Split(content, "\n\n") {
		part = strings.TrimSpace(part)
		if part != "" {
			chunks = append(chunks, part)
		}
	}
	return chunks
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var metadataJSON sql.NullString

	err := row.Scan(&doc.ID, &doc.TenantID, &doc.Title, &doc.Content, &metadataJSON,
		&doc.CreatedAt, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	doc.Metadata = map[string]any{}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &doc, nil
}
