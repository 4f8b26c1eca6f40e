// Package resolve maps the names in a parsed draft to tracker identifiers and
// assembles the issue creation request.
package resolve

import (
	"context"

	"github.com/danielolaszy/quill/pkg/models"
)

// Directory is the project-tracking service as seen by the resolvers.
//
// scope is the resolved team id for team-scoped collections. Backends whose
// collections are global ignore it.
type Directory interface {
	ListEntities(ctx context.Context, kind models.EntityKind, scope string) ([]models.Entity, error)
	ListUsers(ctx context.Context, scope string) ([]models.User, error)
	// ActiveCycle returns nil when the team has no active cycle.
	ActiveCycle(ctx context.Context, teamID string) (*models.Entity, error)
	// CreateIssue submits req and returns the URL of the created issue.
	CreateIssue(ctx context.Context, req models.CreationRequest) (string, error)
}

// Observer receives resolution outcomes and submission stage changes.
type Observer interface {
	Resolution(ev models.ResolutionEvent)
	Stage(stage models.Stage, err error)
}

type nopObserver struct{}

func (nopObserver) Resolution(models.ResolutionEvent) {}
func (nopObserver) Stage(models.Stage, error)         {}

// NopObserver discards all events.
var NopObserver Observer = nopObserver{}
