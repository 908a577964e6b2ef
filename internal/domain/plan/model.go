// Package plan defines the generated planning documents a project session
// accumulates: requirements, design, and the implementation task list.
package plan

// Requirement is a single numbered requirement with EARS-style criteria.
type Requirement struct {
	ID                 string   `json:"id"`
	UserStory          string   `json:"user_story"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
}

// Requirements is the requirements document for a project.
type Requirements struct {
	Introduction string        `json:"introduction"`
	Requirements []Requirement `json:"requirements"`
}

// Component describes one architectural component in a design document.
type Component struct {
	Name           string `json:"name"`
	Responsibility string `json:"responsibility"`
}

// DataModel describes a named data shape in a design document.
type DataModel struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// Design is the technical design document for a project.
type Design struct {
	Overview      string      `json:"overview"`
	Architecture  string      `json:"architecture"`
	Components    []Component `json:"components"`
	DataModels    []DataModel `json:"data_models"`
	ErrorHandling string      `json:"error_handling"`
	TestStrategy  string      `json:"test_strategy"`
}

// Task is one implementation step, ordered within its task list.
type Task struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Details      []string `json:"details,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
}

// Tasks is the ordered implementation plan for a project.
type Tasks struct {
	Tasks []Task `json:"tasks"`
}
