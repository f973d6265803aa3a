package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/worksite/pms-workflow/internal/application/port"
	"github.com/worksite/pms-workflow/internal/domain/entity"
	sqlitedb "github.com/worksite/pms-workflow/internal/infrastructure/persistence/sqlite"
)

// DocumentRepository implements port.DocumentRepository over sqlite
type DocumentRepository struct {
	db     *sqlitedb.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sqlitedb.DB, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores document metadata
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (
			id, request_id, uploaded_by, type, file_name, file_size,
			file_type, description, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlitedb.ExecutorFrom(ctx, r.db.DB).ExecContext(ctx, query,
		doc.ID,
		doc.RequestID,
		doc.UploadedBy,
		doc.Type.String(),
		doc.FileName,
		doc.FileSize,
		doc.FileType,
		doc.Description,
		doc.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create document", zap.Int64("request_id", doc.RequestID), zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// GetByRequestID retrieves document metadata for a request, oldest first
func (r *DocumentRepository) GetByRequestID(ctx context.Context, requestID int64) ([]*entity.Document, error) {
	query := `
		SELECT id, request_id, uploaded_by, type, file_name, file_size,
			file_type, description, created_at
		FROM documents
		WHERE request_id = ?
		ORDER BY created_at, id
	`

	rows, err := sqlitedb.ExecutorFrom(ctx, r.db.DB).QueryContext(ctx, query, requestID)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Int64("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		var doc entity.Document
		var docType string

		err := rows.Scan(
			&doc.ID,
			&doc.RequestID,
			&doc.UploadedBy,
			&docType,
			&doc.FileName,
			&doc.FileSize,
			&doc.FileType,
			&doc.Description,
			&doc.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		doc.Type = entity.DocumentType(docType)
		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

// Verify interface compliance
var _ port.DocumentRepository = (*DocumentRepository)(nil)
