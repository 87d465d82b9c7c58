package project

import (
	"time"

	"github.com/ganot/punchlist/internal/domain/catalog"
)

// Participant is a person attending the inspection.
type Participant struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// Project is one inspected apartment.
type Project struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Address      *string       `json:"address,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	IsActive     bool          `json:"is_active"`
	IsArchived   bool          `json:"is_archived"`
	FinishMode   catalog.Phase `json:"finish_mode"`
	Participants []Participant `json:"participants"`
}

func (p Project) clone() Project {
	out := p
	if p.Address != nil {
		addr := *p.Address
		out.Address = &addr
	}
	out.Participants = append([]Participant(nil), p.Participants...)
	if out.Participants == nil {
		out.Participants = []Participant{}
	}
	return out
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Title        string
	Address      *string
	FinishMode   catalog.Phase
	Participants []Participant
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title        *string        `json:"title,omitempty"`
	Address      *string        `json:"address,omitempty"`
	IsActive     *bool          `json:"is_active,omitempty"`
	FinishMode   *catalog.Phase `json:"finish_mode,omitempty"`
	Participants []Participant  `json:"participants,omitempty"`
}

// State is the persisted registry.
type State struct {
	Projects        []Project `json:"projects"`
	ActiveProjectID string    `json:"active_project_id,omitempty"`
}

func (s State) clone() State {
	out := State{ActiveProjectID: s.ActiveProjectID, Projects: make([]Project, 0, len(s.Projects))}
	for _, p := range s.Projects {
		out.Projects = append(out.Projects, p.clone())
	}
	return out
}

func (s State) index(id string) int {
	for i, p := range s.Projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}
