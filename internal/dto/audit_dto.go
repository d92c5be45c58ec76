package dto

// AuditRunRequest starts or resumes a batch audit.
type AuditRunRequest struct {
	// Cursor is the professor id to resume from; empty starts from the top.
	Cursor string `json:"cursor"`
}

// AuditPageResult reports the outcome of one processed audit page.
type AuditPageResult struct {
	ProcessedCount  int     `json:"processedCount"`
	TotalProfessors int     `json:"totalProfessors"`
	HasMore         bool    `json:"hasMore"`
	NextCursor      *string `json:"nextCursor"`
	Message         string  `json:"message"`

	// Detector-specific metrics; only the relevant fields are populated.
	DuplicatesFound *int `json:"duplicatesFound,omitempty"`
	RatingsRescored *int `json:"ratingsRescored,omitempty"`
	RatingsFlagged  *int `json:"ratingsFlagged,omitempty"`
}

// AuditStatusResponse is a snapshot of the processor between requests.
type AuditStatusResponse struct {
	State           string  `json:"state"`
	Detector        string  `json:"detector,omitempty"`
	ProcessedTotal  int     `json:"processedTotal"`
	TotalProfessors int     `json:"totalProfessors"`
	NextCursor      *string `json:"nextCursor"`
	Message         string  `json:"message,omitempty"`
}

// ResolveReportRequest settles an accumulated rating report.
type ResolveReportRequest struct {
	// Action is either "remove" (delete the offending rating) or "dismiss".
	Action string `json:"action" validate:"required,oneof=remove dismiss"`
}
