package domain

import (
	"math"
	"time"
)

// DefectStatusClosed marks a defect as done for progress reporting.
const DefectStatusClosed = "closed"

// Project is a construction project defects are reported against.
type Project struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Address     string     `json:"address,omitempty"`
	Status      string     `json:"status,omitempty"`
	CreatedBy   int64      `json:"created_by,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// Defect is a single reported issue.
type Defect struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Status      string     `json:"status"`
	ReportedBy  int64      `json:"reported_by"`
	AssignedTo  *int64     `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// DefectStatistics is the aggregate returned by the reports endpoint.
type DefectStatistics struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status,omitempty"`
	ByPriority map[string]int `json:"by_priority,omitempty"`
}

// ProjectProgress summarises defect closure for one project.
type ProjectProgress struct {
	ProjectID int64 `json:"project_id"`
	Defects   int   `json:"defects"`
	Closed    int   `json:"closed"`
	Percent   int   `json:"percent"`
}

// ReportedBy returns the defects whose author is userID. It is a pure
// filter: the result is only as fresh as the defects passed in.
func ReportedBy(defects []Defect, userID int64) []Defect {
	out := make([]Defect, 0)
	for _, d := range defects {
		if d.ReportedBy == userID {
			out = append(out, d)
		}
	}
	return out
}

// CountByStatus tallies defects per status.
func CountByStatus(defects []Defect) map[string]int {
	counts := make(map[string]int)
	for _, d := range defects {
		counts[d.Status]++
	}
	return counts
}

// Progress computes per-project closure in project order. Projects without
// defects report 0%.
func Progress(projects []Project, defects []Defect) []ProjectProgress {
	out := make([]ProjectProgress, 0, len(projects))
	for _, p := range projects {
		pp := ProjectProgress{ProjectID: p.ID}
		for _, d := range defects {
			if d.ProjectID != p.ID {
				continue
			}
			pp.Defects++
			if d.Status == DefectStatusClosed {
				pp.Closed++
			}
		}
		if pp.Defects > 0 {
			pp.Percent = int(math.Round(float64(pp.Closed) / float64(pp.Defects) * 100))
		}
		out = append(out, pp)
	}
	return out
}
