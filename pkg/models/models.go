// Package models defines data structures shared across the application.
package models

import (
	"fmt"
	"strings"
)

// DefaultTitle is used when the draft carries no title.
const DefaultTitle = "AI generated issue"

// EntityKind names a directory collection on the tracker.
type EntityKind string

const (
	// KindTeam is the tracker team collection (Linear teams, Jira projects, GitHub repositories, Trello boards).
	KindTeam EntityKind = "teams"
	// KindProject is the project collection.
	KindProject EntityKind = "projects"
	// KindCycle is the iteration collection.
	KindCycle EntityKind = "cycles"
	// KindUser is the user collection.
	KindUser EntityKind = "users"
)

// ParseEntityKind maps a user supplied collection name to an EntityKind.
func ParseEntityKind(s string) (EntityKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "team", "teams":
		return KindTeam, nil
	case "project", "projects":
		return KindProject, nil
	case "cycle", "cycles":
		return KindCycle, nil
	case "user", "users":
		return KindUser, nil
	}
	return "", fmt.Errorf("unknown directory collection: %q", s)
}

// ParsedDraft holds the issue fields extracted from free text before any
// identifiers are resolved. A nil field means the field was not specified.
type ParsedDraft struct {
	// Title is the issue summary
	Title *string `json:"title" yaml:"title"`

	// Description is the Markdown body of the issue
	Description *string `json:"description" yaml:"description"`

	// Owner is the human-readable name of the intended assignee
	Owner *string `json:"owner" yaml:"owner"`

	// Team is the human-readable tracker team name
	Team *string `json:"team" yaml:"team"`

	// Cycle is the human-readable iteration name
	Cycle *string `json:"cycle" yaml:"cycle"`

	// Project is the human-readable project name
	Project *string `json:"project" yaml:"project"`
}

// Entity is a row of a team, project or cycle listing.
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is a row of the user directory. Every alias is optional.
type User struct {
	ID          string  `json:"id"`
	Name        *string `json:"name,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
	Email       *string `json:"email,omitempty"`
}

// CreationRequest is the fully resolved issue-creation input sent to the tracker.
type CreationRequest struct {
	// Title is the issue summary
	Title string `json:"title"`

	// Description is the issue body, possibly empty
	Description string `json:"description"`

	// TeamID is the canonical tracker team identifier. Always set.
	TeamID string `json:"teamId"`

	// ProjectID is set only when the project resolved
	ProjectID *string `json:"projectId,omitempty"`

	// CycleID is set only when a cycle resolved or the active-cycle fallback found one
	CycleID *string `json:"cycleId,omitempty"`

	// AssigneeID is set only when the owner resolved
	AssigneeID *string `json:"assigneeId,omitempty"`
}

// NewCreationRequest assembles a request from a draft and a resolved team id.
// Title falls back to DefaultTitle and description to the empty string.
func NewCreationRequest(draft ParsedDraft, teamID string) (CreationRequest, error) {
	if strings.TrimSpace(teamID) == "" {
		return CreationRequest{}, ErrTeamUnresolved
	}

	req := CreationRequest{
		Title:       DefaultTitle,
		Description: "",
		TeamID:      teamID,
	}
	if draft.Title != nil {
		req.Title = *draft.Title
	}
	if draft.Description != nil {
		req.Description = *draft.Description
	}
	return req, nil
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}

// Value dereferences p, returning "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
