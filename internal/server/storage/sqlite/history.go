package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/iudanet/gophtext/internal/models"
	"github.com/iudanet/gophtext/internal/server/storage"
)

// AppendOperation сохраняет принятую запись истории документа.
// Повторная запись той же версии отклоняется с ErrVersionConflict.
func (s *Storage) AppendOperation(ctx context.Context, docID string, entry models.VersionedOperation) error {
	if entry.Version > math.MaxInt64 {
		return fmt.Errorf("version %d does not fit into database", entry.Version)
	}

	query := `
		INSERT INTO operations (
			doc_id, version, client_id, type, position, value, originator, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_id, version) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		docID,
		int64(entry.Version),
		entry.ClientID,
		entry.Op.Type.String(),
		entry.Op.Position,
		int64(entry.Op.Value),
		entry.Op.Originator,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert operation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: document %s version %d", storage.ErrVersionConflict, docID, entry.Version)
	}

	return nil
}

// LoadHistory возвращает всю историю документа по возрастанию версий
func (s *Storage) LoadHistory(ctx context.Context, docID string) ([]models.VersionedOperation, error) {
	return s.GetOperationsSince(ctx, docID, 0)
}

// GetOperationsSince возвращает записи с версией больше since
func (s *Storage) GetOperationsSince(ctx context.Context, docID string, since uint64) ([]models.VersionedOperation, error) {
	if since > math.MaxInt64 {
		return []models.VersionedOperation{}, nil
	}

	query := `
		SELECT version, client_id, type, position, value, originator
		FROM operations
		WHERE doc_id = ? AND version > ?
		ORDER BY version ASC
	`

	rows, err := s.db.QueryContext(ctx, query, docID, int64(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	entries := make([]models.VersionedOperation, 0)
	for rows.Next() {
		entry, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate operations: %w", err)
	}

	return entries, nil
}

// ListDocuments возвращает идентификаторы документов с сохраненной историей
func (s *Storage) ListDocuments(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT doc_id FROM operations ORDER BY doc_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := make([]string, 0)
	for rows.Next() {
		var docID string
		if err := rows.Scan(&docID); err != nil {
			return nil, fmt.Errorf("failed to scan document id: %w", err)
		}
		docs = append(docs, docID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

func scanOperation(rows *sql.Rows) (models.VersionedOperation, error) {
	var (
		entry   models.VersionedOperation
		version int64
		opType  string
		value   int64
	)

	if err := rows.Scan(
		&version,
		&entry.ClientID,
		&opType,
		&entry.Op.Position,
		&value,
		&entry.Op.Originator,
	); err != nil {
		return entry, fmt.Errorf("failed to scan operation: %w", err)
	}

	t, err := models.ParseOpType(opType)
	if err != nil {
		return entry, fmt.Errorf("failed to parse operation type of version %d: %w", version, err)
	}

	entry.Version = uint64(version)
	entry.Op.Type = t
	entry.Op.Value = rune(value)
	return entry, nil
}
