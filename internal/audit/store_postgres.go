package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PostgresStore persists audit entries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed audit store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("entry is required")
	}
	query := `
		INSERT INTO audit_logs (id, timestamp, action_type, entity_type, entity_id, description, data, user_id, user_entity_id, product_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	var data any
	if len(entry.Data) > 0 {
		data = []byte(entry.Data)
	}
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Timestamp,
		string(entry.ActionType),
		entry.EntityType,
		entry.EntityID,
		entry.Description,
		data,
		entry.UserID,
		entry.UserEntityID,
		entry.ProductID,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error) {
	where, args := whereClause(filter)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, timestamp, action_type, entity_type, entity_id, description, data, user_id, user_entity_id, product_id
		FROM audit_logs%s
		ORDER BY timestamp DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var actionType string
		var data []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&actionType,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Description,
			&data,
			&entry.UserID,
			&entry.UserEntityID,
			&entry.ProductID,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.ActionType = ActionType(actionType)
		entry.Data = data
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := whereClause(filter)
	var count int
	query := "SELECT COUNT(*) FROM audit_logs" + where
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return count, nil
}

// Truncate removes every audit entry. Bulk-administrative use only.
func (s *PostgresStore) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "TRUNCATE audit_logs"); err != nil {
		return fmt.Errorf("truncate audit entries: %w", err)
	}
	return nil
}

func whereClause(filter Filter) (string, []any) {
	var conds []string
	var args []any
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		conds = append(conds, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if filter.ActionType != "" {
		args = append(args, string(filter.ActionType))
		conds = append(conds, fmt.Sprintf("action_type = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
