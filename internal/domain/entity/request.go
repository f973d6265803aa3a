package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/worksite/pms-workflow/internal/domain/workflow"
)

// Request represents a procurement request climbing the approval hierarchy.
// It is mutated only by the workflow engine; Version backs the
// optimistic-concurrency check on every transition.
type Request struct {
	ID            int64               `json:"id"`
	RequestNumber string              `json:"request_number"`
	Status        workflow.Status     `json:"status"`
	CreatedBy     string              `json:"created_by"`
	Item          string              `json:"item"`
	Description   string              `json:"description"`
	Quantity      decimal.Decimal     `json:"quantity"`
	Unit          string              `json:"unit"`
	Category      string              `json:"category"`
	DeliveryAddress string            `json:"delivery_address"`
	Reason        string              `json:"reason"`

	// NextApprover is the single user empowered to decide on the request.
	// It is nil whenever the status is outside PENDING/IN_REVIEW.
	NextApprover *string `json:"next_approver,omitempty"`

	RevisionCount int    `json:"revision_count"`
	RevisionNotes string `json:"revision_notes,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Unit constants for Request.Quantity
const (
	UnitPieces      = "PIECES"
	UnitKilogram    = "KG"
	UnitTon         = "TON"
	UnitMeter       = "METER"
	UnitSquareMeter = "M2"
	UnitCubicMeter  = "M3"
	UnitLiter       = "LITER"
)

var validUnits = map[string]bool{
	UnitPieces:      true,
	UnitKilogram:    true,
	UnitTon:         true,
	UnitMeter:       true,
	UnitSquareMeter: true,
	UnitCubicMeter:  true,
	UnitLiter:       true,
}

// IsValidUnit reports whether unit is one of the supported quantity units
func IsValidUnit(unit string) bool {
	return validUnits[unit]
}

// NewRequestNumber generates a human-readable request number in the
// form REQ-YYYY-XXXXXX. Uniqueness is enforced by the store; callers
// regenerate on conflict.
func NewRequestNumber(now time.Time) string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("REQ-%d-%s", now.Year(), random)
}
