package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// Assignee identifies the member a task is assigned to.
type Assignee struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Task is a tenant-scoped work item.
type Task struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"-"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	Assignee       *Assignee  `json:"assignee,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Tags           []string   `json:"tags"`
	Comments       int        `json:"comments"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TaskUpdate describes a partial update. Set flags distinguish "clear
// this field" from "leave it alone" for nullable columns.
type TaskUpdate struct {
	Title       *string
	Status      *string
	Priority    *string
	Assignee    *Assignee
	AssigneeSet bool
	DueDate     *time.Time
	DueDateSet  bool
	Tags        []string
	TagsSet     bool
}

// Empty reports whether the update would change nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Status == nil && u.Priority == nil &&
		!u.AssigneeSet && !u.DueDateSet && !u.TagsSet
}

const taskColumns = `id, tenant_id, title, status, priority, assignee, due_date, tags, comments, acknowledged_at, created_at, updated_at`

// CreateTask inserts a task for the tenant and returns it with its
// generated id and timestamps.
func (s *Store) CreateTask(ctx context.Context, task *Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Tags == nil {
		task.Tags = []string{}
	}

	assigneeJSON, err := marshalNullable(task.Assignee)
	if err != nil {
		return fmt.Errorf("failed to marshal assignee: %w", err)
	}
	tagsJSON, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.TenantID, task.Title, task.Status, task.Priority,
		assigneeJSON, nullTime(task.DueDate), string(tagsJSON), task.Comments,
		nullTime(task.AcknowledgedAt), task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// GetTask fetches one task scoped to the tenant.
func (s *Store) GetTask(ctx context.Context, tenantID, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE tenant_id = ? AND id = ?`, tenantID, id)
	return scanTask(row)
}

// ListTasks returns the tenant's tasks, newest first.
func (s *Store) ListTasks(ctx context.Context, tenantID string) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE tenant_id = ? ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// UpdateTask applies a partial update scoped to the tenant and returns
// the updated row. Returns ErrNotFound when the tenant owns no such
// task.
func (s *Store) UpdateTask(ctx context.Context, tenantID, id string, up TaskUpdate) (*Task, error) {
	builder := s.sb.Update("tasks").
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"tenant_id": tenantID, "id": id})

	if up.Title != nil {
		builder = builder.Set("title", *up.Title)
	}
	if up.Status != nil {
		builder = builder.Set("status", *up.Status)
	}
	if up.Priority != nil {
		builder = builder.Set("priority", *up.Priority)
	}
	if up.AssigneeSet {
		assigneeJSON, err := marshalNullable(up.Assignee)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal assignee: %w", err)
		}
		builder = builder.Set("assignee", assigneeJSON)
	}
	if up.DueDateSet {
		builder = builder.Set("due_date", nullTime(up.DueDate))
	}
	if up.TagsSet {
		tags := up.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tags: %w", err)
		}
		builder = builder.Set("tags", string(tagsJSON))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetTask(ctx, tenantID, id)
}

// AcknowledgeTask stamps acknowledged_at on the tenant's task.
func (s *Store) AcknowledgeTask(ctx context.Context, tenantID, id string, at time.Time) (*Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET acknowledged_at = ?, updated_at = ? WHERE tenant_id = ? AND id = ?`,
		at, time.Now().UTC(), tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to acknowledge task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetTask(ctx, tenantID, id)
}

// DeleteTask removes the tenant's task. Deleting a row the tenant does
// not own is a no-op reported as ErrNotFound.
func (s *Store) DeleteTask(ctx context.Context, tenantID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var task Task
	var assigneeJSON, tagsJSON sql.NullString
	var dueDate, acknowledgedAt sql.NullTime

	err := row.Scan(&task.ID, &task.TenantID, &task.Title, &task.Status, &task.Priority,
		&assigneeJSON, &dueDate, &tagsJSON, &task.Comments, &acknowledgedAt,
		&task.CreatedAt, &task.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	if assigneeJSON.Valid && assigneeJSON.String != "" {
		var a Assignee
		if err := json.Unmarshal([]byte(assigneeJSON.String), &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal assignee: %w", err)
		}
		task.Assignee = &a
	}
	task.Tags = []string{}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &task.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	if acknowledgedAt.Valid {
		t := acknowledgedAt.Time
		task.AcknowledgedAt = &t
	}
	return &task, nil
}

func marshalNullable(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	// Typed nil pointers also mean NULL.
	if a, ok := v.(*Assignee); ok && a == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
