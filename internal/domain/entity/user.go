package entity

// User is the slice of the org directory the workflow core needs.
// SupervisorID is nil at the top of the hierarchy.
type User struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	SupervisorID *string `json:"supervisor_id,omitempty"`
	IsAdmin      bool    `json:"is_admin"`
	CanPurchase  bool    `json:"can_purchase"`
	WorksiteID   string  `json:"worksite_id"`
}
