package models

import (
	"encoding/json"
	"time"
)

// Rating is one accepted student evaluation. Ratings are immutable once
// folded into a professor aggregate and only exist inside its review buckets.
type Rating struct {
	ID                            string             `json:"id"`
	ProfessorID                   string             `json:"professor"`
	Grade                         string             `json:"grade"`
	GradeLevel                    string             `json:"gradeLevel"`
	CourseType                    string             `json:"courseType"`
	PostDate                      time.Time          `json:"postDate"`
	OverallRating                 int                `json:"overallRating"`
	PresentsMaterialClearly       int                `json:"presentsMaterialClearly"`
	RecognizesStudentDifficulties int                `json:"recognizesStudentDifficulties"`
	Text                          string             `json:"rating"`
	Tags                          []string           `json:"tags,omitempty"`
	AnonymousIdentifier           string             `json:"anonymousIdentifier,omitempty"`
	ModerationScores              map[string]float64 `json:"moderationScores,omitempty"`
}

// PendingStatus tracks a submission through the moderation pipeline.
type PendingStatus string

const (
	PendingStatusQueued     PendingStatus = "Queued"
	PendingStatusProcessing PendingStatus = "Processing"
	PendingStatusSuccessful PendingStatus = "Successful"
	PendingStatusFailed     PendingStatus = "Failed"
)

// PendingRating is a submitted rating awaiting (or finished with) moderation.
// Entries live in the professor queue and are mirrored into the append-only
// rating log, where the store's retention expires them after three weeks.
type PendingRating struct {
	Rating
	Course           string          `json:"course"`
	Status           PendingStatus   `json:"status"`
	Error            string          `json:"error,omitempty"`
	ProviderResponse json.RawMessage `json:"providerResponse,omitempty"`
}

// RatingReport accumulates abuse reports filed against a single rating.
// Repeat reports append to the existing record rather than creating a new one.
type RatingReport struct {
	RatingID    string   `json:"ratingId"`
	ProfessorID string   `json:"professorId"`
	Reports     []Report `json:"reports"`
}

// Report is one abuse report entry inside a RatingReport.
type Report struct {
	Email               string    `json:"email,omitempty"`
	Reason              string    `json:"reason"`
	AnonymousIdentifier string    `json:"anonymousIdentifier,omitempty"`
	SubmittedAt         time.Time `json:"submittedAt"`
}

// User identifies a registered account. Credential handling lives outside
// this service; the record exists so bulk namespace operations cover it.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
