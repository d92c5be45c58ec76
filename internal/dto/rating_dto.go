package dto

// RatingSubmissionRequest carries one incoming rating submission.
type RatingSubmissionRequest struct {
	ProfessorID                   string   `json:"-" validate:"required,uuid4"`
	Course                        string   `json:"course" validate:"required,max=16"`
	Grade                         string   `json:"grade" validate:"omitempty,max=4"`
	GradeLevel                    string   `json:"gradeLevel" validate:"omitempty,max=16"`
	CourseType                    string   `json:"courseType" validate:"omitempty,max=16"`
	OverallRating                 int      `json:"overallRating" validate:"min=0,max=4"`
	PresentsMaterialClearly       int      `json:"presentsMaterialClearly" validate:"min=0,max=4"`
	RecognizesStudentDifficulties int      `json:"recognizesStudentDifficulties" validate:"min=0,max=4"`
	Rating                        string   `json:"rating" validate:"required,min=20,max=2000"`
	Tags                          []string `json:"tags" validate:"omitempty,max=3,dive,max=50"`
	AnonymousIdentifier           string   `json:"anonymousIdentifier" validate:"omitempty,max=64"`
}

// ReportRequest carries one abuse report against a rating.
type ReportRequest struct {
	ProfessorID string `json:"-" validate:"required,uuid4"`
	RatingID    string `json:"-" validate:"required,uuid4"`
	Email       string `json:"email" validate:"omitempty,email"`
	Reason      string `json:"reason" validate:"required,min=10,max=1000"`
}
