package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worksite/pms-workflow/internal/application/approver"
	"github.com/worksite/pms-workflow/internal/application/authz"
	"github.com/worksite/pms-workflow/internal/application/port"
	"github.com/worksite/pms-workflow/internal/domain/document"
	"github.com/worksite/pms-workflow/internal/domain/entity"
	"github.com/worksite/pms-workflow/internal/domain/workflow"
)

// RegisterDocumentInput carries the metadata of an uploaded document.
// The file bytes themselves live in external storage.
type RegisterDocumentInput struct {
	RequestID   int64
	UploadedBy  string
	Type        entity.DocumentType
	FileName    string
	FileSize    int64
	FileType    string
	Description string
}

// DocumentService validates and records procurement document uploads.
// Eligibility follows the document-type/status table; the UI consults
// CanUpload before offering an upload control, and RegisterDocument
// re-validates it before accepting one.
type DocumentService interface {
	CanUpload(docType entity.DocumentType, status workflow.Status) bool
	RegisterDocument(ctx context.Context, input RegisterDocumentInput) (*entity.Document, error)
	ListDocuments(ctx context.Context, requestID int64, actorID string) ([]*entity.Document, error)
}

type documentServiceImpl struct {
	documentRepo port.DocumentRepository
	requestRepo  port.RequestRepository
	directory    port.UserDirectory
	gate         *authz.Gate
	resolver     *approver.Resolver
	logger       *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documentRepo port.DocumentRepository,
	requestRepo port.RequestRepository,
	directory port.UserDirectory,
	gate *authz.Gate,
	resolver *approver.Resolver,
	logger *zap.Logger,
) DocumentService {
	return &documentServiceImpl{
		documentRepo: documentRepo,
		requestRepo:  requestRepo,
		directory:    directory,
		gate:         gate,
		resolver:     resolver,
		logger:       logger,
	}
}

func (s *documentServiceImpl) CanUpload(docType entity.DocumentType, status workflow.Status) bool {
	return document.CanUpload(docType, status)
}

func (s *documentServiceImpl) RegisterDocument(ctx context.Context, input RegisterDocumentInput) (*entity.Document, error) {
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown document type %q", workflow.ErrValidation, input.Type)
	}
	if strings.TrimSpace(input.FileName) == "" {
		return nil, fmt.Errorf("%w: file name is required", workflow.ErrValidation)
	}

	request, err := s.requestRepo.GetByID(ctx, input.RequestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request %d: %w", input.RequestID, err)
	}
	if request == nil {
		return nil, fmt.Errorf("%w: id %d", port.ErrRequestNotFound, input.RequestID)
	}

	uploader, err := s.directory.GetUser(ctx, input.UploadedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", input.UploadedBy, err)
	}

	chain, err := s.resolver.Chain(ctx, request.CreatedBy)
	if err != nil {
		return nil, err
	}
	if !s.gate.CanRead(uploader, request, chain) {
		return nil, fmt.Errorf("%w: user %s may not attach documents to request %s", workflow.ErrPermissionDenied, input.UploadedBy, request.RequestNumber)
	}

	if !document.CanUpload(input.Type, request.Status) {
		return nil, fmt.Errorf("%w: %s documents are not accepted while request is %s", workflow.ErrValidation, input.Type, request.Status)
	}

	doc := &entity.Document{
		ID:          uuid.NewString(),
		RequestID:   request.ID,
		UploadedBy:  uploader.ID,
		Type:        input.Type,
		FileName:    input.FileName,
		FileSize:    input.FileSize,
		FileType:    input.FileType,
		Description: input.Description,
		CreatedAt:   time.Now(),
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to record document: %w", err)
	}

	s.logger.Info("Document registered",
		zap.String("document_id", doc.ID),
		zap.String("request_number", request.RequestNumber),
		zap.String("document_type", doc.Type.String()))

	return doc, nil
}

func (s *documentServiceImpl) ListDocuments(ctx context.Context, requestID int64, actorID string) ([]*entity.Document, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request %d: %w", requestID, err)
	}
	if request == nil {
		return nil, fmt.Errorf("%w: id %d", port.ErrRequestNotFound, requestID)
	}

	actor, err := s.directory.GetUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", actorID, err)
	}

	chain, err := s.resolver.Chain(ctx, request.CreatedBy)
	if err != nil {
		return nil, err
	}
	if !s.gate.CanRead(actor, request, chain) {
		return nil, fmt.Errorf("%w: user %s may not view request %s", workflow.ErrPermissionDenied, actorID, request.RequestNumber)
	}

	return s.documentRepo.GetByRequestID(ctx, requestID)
}
