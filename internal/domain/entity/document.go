package entity

import "time"

// DocumentType classifies procurement documents uploaded against a request
type DocumentType string

const (
	DocumentQuote         DocumentType = "QUOTE"
	DocumentPurchaseOrder DocumentType = "PURCHASE_ORDER"
	DocumentDispatchNote  DocumentType = "DISPATCH_NOTE"
	DocumentReceipt       DocumentType = "RECEIPT"
	DocumentInvoice       DocumentType = "INVOICE"
	DocumentOther         DocumentType = "OTHER"
)

var validDocumentTypes = map[DocumentType]bool{
	DocumentQuote:         true,
	DocumentPurchaseOrder: true,
	DocumentDispatchNote:  true,
	DocumentReceipt:       true,
	DocumentInvoice:       true,
	DocumentOther:         true,
}

// IsValid returns true if the document type is one of the supported types
func (t DocumentType) IsValid() bool {
	return validDocumentTypes[t]
}

// String returns the string representation of the document type
func (t DocumentType) String() string {
	return string(t)
}

// Document holds the metadata of an uploaded procurement document. The file
// bytes live in external storage; eligibility against the request's status
// is checked at upload time, never persisted.
type Document struct {
	ID          string       `json:"id"`
	RequestID   int64        `json:"request_id"`
	UploadedBy  string       `json:"uploaded_by"`
	Type        DocumentType `json:"document_type"`
	FileName    string       `json:"file_name"`
	FileSize    int64        `json:"file_size"`
	FileType    string       `json:"file_type"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
}
