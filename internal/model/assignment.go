package model

// AssignmentStatus indicates the outcome of a proposed categorization for one
// row.
type AssignmentStatus string

// Assignment status constants.
const (
	// StatusAssigned means the model returned a recognized category.
	StatusAssigned AssignmentStatus = "ASSIGNED"
	// StatusRejected means the model answered for the row but the answer was
	// unusable (missing line or unknown category).
	StatusRejected AssignmentStatus = "REJECTED"
	// StatusFailed means the generation call for the row's whole batch failed.
	StatusFailed AssignmentStatus = "FAILED"
)

// Assignment is a proposed category for one row. It is ephemeral: nothing is
// persisted until the user confirms the proposal.
type Assignment struct {
	Category string           `json:"category,omitempty"`
	Reason   string           `json:"reason,omitempty"`
	Note     string           `json:"note,omitempty"`
	Status   AssignmentStatus `json:"status"`
	RowIndex int              `json:"row_index"`
}

// Assigned reports whether the assignment carries a usable category.
func (a Assignment) Assigned() bool {
	return a.Status == StatusAssigned
}
