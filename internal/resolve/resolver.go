package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/danielolaszy/quill/internal/match"
	"github.com/danielolaszy/quill/internal/telemetry"
	"github.com/danielolaszy/quill/pkg/models"
)

// Resolver turns human-readable names into directory identifiers.
type Resolver struct {
	dir Directory
	obs Observer
}

// NewResolver returns a Resolver over dir. A nil observer discards events.
func NewResolver(dir Directory, obs Observer) *Resolver {
	if obs == nil {
		obs = NopObserver
	}
	return &Resolver{dir: dir, obs: obs}
}

func (r *Resolver) startSpan(ctx context.Context, kind models.EntityKind) (context.Context, trace.Span) {
	ctx, span := telemetry.Tracer("resolve").Start(ctx, "resolve."+string(kind))
	span.SetAttributes(attribute.String("quill.resolve.kind", string(kind)))
	return ctx, span
}

// ResolveByExactName returns the id of the first entity of kind whose name
// equals name after trimming and case folding. A nil or blank name returns
// nil without a listing call. No match is a soft miss and also returns nil.
func (r *Resolver) ResolveByExactName(ctx context.Context, kind models.EntityKind, name *string, scope string) (*string, error) {
	if name == nil || strings.TrimSpace(*name) == "" {
		r.obs.Resolution(models.ResolutionEvent{Kind: kind, Outcome: models.OutcomeSkipped})
		return nil, nil
	}

	ctx, span := r.startSpan(ctx, kind)
	defer span.End()

	entities, err := r.dir.ListEntities(ctx, kind, scope)
	if err != nil {
		err = directoryError(fmt.Sprintf("failed to list %s", kind), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	want := fold(*name)
	for _, e := range entities {
		if fold(e.Name) == want {
			r.obs.Resolution(models.ResolutionEvent{
				Kind:    kind,
				Query:   *name,
				Outcome: models.OutcomeHit,
				ID:      e.ID,
				Score:   match.ExactScore,
			})
			span.SetAttributes(attribute.String("quill.resolve.outcome", string(models.OutcomeHit)))
			id := e.ID
			return &id, nil
		}
	}

	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name)
	}
	r.obs.Resolution(models.ResolutionEvent{
		Kind:       kind,
		Query:      *name,
		Outcome:    models.OutcomeMiss,
		Candidates: names,
	})
	span.SetAttributes(attribute.String("quill.resolve.outcome", string(models.OutcomeMiss)))
	return nil, nil
}

// ResolveAssignee fuzzy-matches name against the user directory. A nil or
// blank name (after stripping a leading "@") returns nil without a listing call.
func (r *Resolver) ResolveAssignee(ctx context.Context, name *string, scope string) (*string, error) {
	if name == nil || match.NormalizeQuery(*name) == "" {
		r.obs.Resolution(models.ResolutionEvent{Kind: models.KindUser, Outcome: models.OutcomeSkipped})
		return nil, nil
	}

	ctx, span := r.startSpan(ctx, models.KindUser)
	defer span.End()

	users, err := r.dir.ListUsers(ctx, scope)
	if err != nil {
		err = directoryError("failed to list users", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	id, score, ok := match.BestUser(*name, users)
	span.SetAttributes(attribute.Float64("quill.resolve.score", score))

	ev := models.ResolutionEvent{Kind: models.KindUser, Query: *name, Score: score}
	if !ok {
		ev.Outcome = models.OutcomeMiss
		ev.Candidates = userNames(users)
		r.obs.Resolution(ev)
		return nil, nil
	}
	ev.Outcome = models.OutcomeHit
	ev.ID = id
	r.obs.Resolution(ev)
	return &id, nil
}

// ResolveCycle resolves name exactly and, when that yields nothing and teamID
// is known, falls back to the team's active cycle.
func (r *Resolver) ResolveCycle(ctx context.Context, name, teamID *string) (*string, error) {
	scope := models.Value(teamID)

	id, err := r.ResolveByExactName(ctx, models.KindCycle, name, scope)
	if err != nil || id != nil {
		return id, err
	}
	if teamID == nil || *teamID == "" {
		return nil, nil
	}

	ctx, span := telemetry.Tracer("resolve").Start(ctx, "resolve.active_cycle")
	defer span.End()

	active, err := r.dir.ActiveCycle(ctx, *teamID)
	if err != nil {
		err = directoryError("failed to fetch active cycle", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if active == nil || active.ID == "" {
		r.obs.Resolution(models.ResolutionEvent{
			Kind:    models.KindCycle,
			Query:   models.Value(name),
			Outcome: models.OutcomeMiss,
		})
		span.SetAttributes(attribute.String("quill.resolve.outcome", string(models.OutcomeMiss)))
		return nil, nil
	}

	r.obs.Resolution(models.ResolutionEvent{
		Kind:    models.KindCycle,
		Query:   models.Value(name),
		Outcome: models.OutcomeFallback,
		ID:      active.ID,
	})
	cycleID := active.ID
	return &cycleID, nil
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func userNames(users []models.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		switch {
		case u.DisplayName != nil && *u.DisplayName != "":
			names = append(names, *u.DisplayName)
		case u.Name != nil && *u.Name != "":
			names = append(names, *u.Name)
		case u.Email != nil:
			names = append(names, *u.Email)
		}
	}
	return names
}

func directoryError(msg string, err error) error {
	if errors.Is(err, models.ErrDirectoryRequestFailed) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%s: %w: %w", msg, models.ErrDirectoryRequestFailed, err)
}
