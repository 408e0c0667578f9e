package domain

// Dashboard is the role-scoped view model shown after a session is
// confirmed. Collections that failed to load are left empty.
type Dashboard struct {
	User        UserProfile       `json:"user"`
	RoleLabel   string            `json:"role_label"`
	Permissions []Permission      `json:"permissions"`
	Projects    []Project         `json:"projects"`
	Defects     []Defect          `json:"defects"`
	Statistics  *DefectStatistics `json:"statistics,omitempty"`
	Progress    []ProjectProgress `json:"progress"`
	Users       []UserProfile     `json:"users,omitempty"`

	// Engineer-only derived views.
	MyDefects      []Defect       `json:"my_defects,omitempty"`
	MyStatusCounts map[string]int `json:"my_status_counts,omitempty"`

	FailedSections []string `json:"failed_sections,omitempty"`
}
