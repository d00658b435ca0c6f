package dto

// SeedCatalogRequest is the curriculum seed document. The raw body is checked
// against the embedded JSON Schema before it is unmarshalled into this shape.
type SeedCatalogRequest struct {
	Tracks []SeedTrack `json:"tracks"`
}

// SeedTrack seeds one track and its projects.
type SeedTrack struct {
	Code          string        `json:"code"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Icon          string        `json:"icon"`
	DurationWeeks int           `json:"duration_weeks"`
	Projects      []SeedProject `json:"projects"`
}

// SeedProject seeds one project with its steps and deliverables.
type SeedProject struct {
	Number         int               `json:"number"`
	Title          string            `json:"title"`
	Subtitle       string            `json:"subtitle"`
	Description    string            `json:"description"`
	ProjectType    string            `json:"project_type"`
	TechStack      []string          `json:"tech_stack"`
	EstimatedHours int               `json:"estimated_hours"`
	Steps          []SeedStep        `json:"steps"`
	Deliverables   []SeedDeliverable `json:"deliverables"`
}

// SeedStep seeds a checklist step.
type SeedStep struct {
	StepNumber       int      `json:"step_number"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	EstimatedMinutes int      `json:"estimated_minutes"`
	Resources        []string `json:"resources"`
}

// SeedDeliverable seeds a deliverable definition.
type SeedDeliverable struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DeliverableType string `json:"deliverable_type"`
	IsRequired      *bool  `json:"is_required"`
	Order           int    `json:"order"`
}
