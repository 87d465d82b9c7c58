package project

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/punchlist/internal/domain/catalog"
)

// StateVersion is the persisted version of the project store.
// Version 1 stored participants as plain names.
const StateVersion = 2

type storedProject struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Address      *string         `json:"address,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	IsActive     bool            `json:"is_active"`
	IsArchived   bool            `json:"is_archived"`
	FinishMode   catalog.Phase   `json:"finish_mode"`
	Participants json.RawMessage `json:"participants"`
}

type storedState struct {
	Projects        []json.RawMessage `json:"projects"`
	ActiveProjectID string            `json:"active_project_id"`
}

// migrator returns the hydrate hook for the project store. Records that
// cannot be read are dropped and logged instead of failing the whole load.
func migrator(logger *slog.Logger) func(json.RawMessage, int) (State, error) {
	return func(raw json.RawMessage, version int) (State, error) {
		if version > StateVersion {
			return State{}, fmt.Errorf("project store version %d is newer than supported %d", version, StateVersion)
		}

		var stored storedState
		if err := json.Unmarshal(raw, &stored); err != nil {
			return State{}, fmt.Errorf("decoding project store: %w", err)
		}

		state := State{Projects: make([]Project, 0, len(stored.Projects))}
		seen := make(map[string]bool, len(stored.Projects))
		for i, item := range stored.Projects {
			proj, err := decodeProject(item, version)
			if err != nil {
				logger.Warn("dropping invalid project record", "index", i, "error", err)
				continue
			}
			if seen[proj.ID] {
				logger.Warn("dropping duplicate project record", "project_id", proj.ID)
				continue
			}
			seen[proj.ID] = true
			state.Projects = append(state.Projects, proj)
		}
		if seen[stored.ActiveProjectID] {
			state.ActiveProjectID = stored.ActiveProjectID
		}
		return state, nil
	}
}

func decodeProject(raw json.RawMessage, version int) (Project, error) {
	var rec storedProject
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Project{}, err
	}
	if strings.TrimSpace(rec.ID) == "" {
		return Project{}, fmt.Errorf("%w: missing id", ErrInvalidInput)
	}
	if strings.TrimSpace(rec.Title) == "" {
		return Project{}, fmt.Errorf("%w: project %s has no title", ErrInvalidInput, rec.ID)
	}
	if rec.FinishMode == "" {
		rec.FinishMode = catalog.PhaseDraft
	}
	if !rec.FinishMode.Valid() {
		return Project{}, fmt.Errorf("%w: project %s has finish mode %q", ErrInvalidInput, rec.ID, rec.FinishMode)
	}

	participants, err := decodeParticipants(rec.Participants, version)
	if err != nil {
		return Project{}, fmt.Errorf("project %s participants: %w", rec.ID, err)
	}

	return Project{
		ID:           rec.ID,
		Title:        rec.Title,
		Address:      rec.Address,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
		IsActive:     rec.IsActive,
		IsArchived:   rec.IsArchived,
		FinishMode:   rec.FinishMode,
		Participants: participants,
	}, nil
}

func decodeParticipants(raw json.RawMessage, version int) ([]Participant, error) {
	out := []Participant{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if version < 2 {
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			return nil, err
		}
		for _, name := range names {
			out = append(out, Participant{Name: name})
		}
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
