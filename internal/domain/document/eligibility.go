// Package document holds the pure eligibility rules for procurement
// document uploads. The UI consults them before offering an upload
// control; the core re-validates before accepting one.
package document

import (
	"github.com/worksite/pms-workflow/internal/domain/entity"
	"github.com/worksite/pms-workflow/internal/domain/workflow"
)

// eligibleStatuses maps each document type to the lifecycle statuses in
// which it may be uploaded. OTHER is absent: it is eligible in any status.
var eligibleStatuses = map[entity.DocumentType]map[workflow.Status]bool{
	entity.DocumentQuote: {
		workflow.StatusDraft:    true,
		workflow.StatusPending:  true,
		workflow.StatusInReview: true,
		workflow.StatusApproved: true,
	},
	entity.DocumentPurchaseOrder: {
		workflow.StatusApproved:   true,
		workflow.StatusPurchasing: true,
		workflow.StatusOrdered:    true,
	},
	entity.DocumentDispatchNote: {
		workflow.StatusOrdered:   true,
		workflow.StatusDelivered: true,
	},
	entity.DocumentReceipt: {
		workflow.StatusDelivered: true,
		workflow.StatusCompleted: true,
	},
	entity.DocumentInvoice: {
		workflow.StatusDelivered: true,
		workflow.StatusCompleted: true,
	},
}

// CanUpload reports whether a document of the given type may be uploaded
// while the request is in the given status. It has no side effects.
func CanUpload(docType entity.DocumentType, status workflow.Status) bool {
	if !docType.IsValid() || !status.IsValid() {
		return false
	}
	if docType == entity.DocumentOther {
		return true
	}
	return eligibleStatuses[docType][status]
}
