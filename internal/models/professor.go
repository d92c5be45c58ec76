package models

// Professor is the aggregate root for one instructor's running statistics.
// The three averages are kept in [0, 4] and rounded to two decimals after
// every fold, so they are path-dependent approximations of the true mean.
type Professor struct {
	ID                  string              `json:"id"`
	FirstName           string              `json:"firstName"`
	LastName            string              `json:"lastName"`
	Department          string              `json:"department"`
	Courses             []string            `json:"courses"`
	NumEvals            int                 `json:"numEvals"`
	OverallRating       float64             `json:"overallRating"`
	MaterialClear       float64             `json:"materialClear"`
	StudentDifficulties float64             `json:"studentDifficulties"`
	Reviews             map[string][]Rating `json:"reviews"`
	Tags                map[string]int      `json:"tags,omitempty"`
}

// Name returns the professor's display name, used for id-collision checks.
func (p *Professor) Name() string {
	return p.FirstName + " " + p.LastName
}

// Truncate projects the aggregate into its index form, dropping the
// embedded review buckets.
func (p *Professor) Truncate() TruncatedProfessor {
	// The index schema requires an array, so courses must survive as [] even
	// when the professor has none yet.
	courses := make([]string, 0, len(p.Courses))
	courses = append(courses, p.Courses...)
	tags := make(map[string]int, len(p.Tags))
	for name, count := range p.Tags {
		tags[name] = count
	}

	return TruncatedProfessor{
		ID:                  p.ID,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		Department:          p.Department,
		Courses:             courses,
		NumEvals:            p.NumEvals,
		OverallRating:       p.OverallRating,
		MaterialClear:       p.MaterialClear,
		StudentDifficulties: p.StudentDifficulties,
		Tags:                tags,
	}
}

// TruncatedProfessor is the list-view projection of a Professor. Every
// professor write refreshes the matching entry inside the single
// all-professors index record.
type TruncatedProfessor struct {
	ID                  string         `json:"id"`
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Department          string         `json:"department"`
	Courses             []string       `json:"courses"`
	NumEvals            int            `json:"numEvals"`
	OverallRating       float64        `json:"overallRating"`
	MaterialClear       float64        `json:"materialClear"`
	StudentDifficulties float64        `json:"studentDifficulties"`
	Tags                map[string]int `json:"tags,omitempty"`
}
