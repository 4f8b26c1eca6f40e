package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/danielolaszy/quill/internal/telemetry"
	"github.com/danielolaszy/quill/pkg/models"
)

// DraftExtractor produces a parsed draft from reporter input.
type DraftExtractor interface {
	Extract(ctx context.Context, reporterContext, selection string) (models.ParsedDraft, error)
}

// Orchestrator runs one submission: team resolution, the concurrent
// project/cycle/assignee resolutions, request assembly and the mutation.
type Orchestrator struct {
	dir      Directory
	resolver *Resolver
	obs      Observer
}

// NewOrchestrator returns an Orchestrator submitting to dir.
func NewOrchestrator(dir Directory, obs Observer) *Orchestrator {
	if obs == nil {
		obs = NopObserver
	}
	return &Orchestrator{
		dir:      dir,
		resolver: NewResolver(dir, obs),
		obs:      obs,
	}
}

// CreateFromText extracts a draft with ext and submits it.
func (o *Orchestrator) CreateFromText(ctx context.Context, ext DraftExtractor, reporterContext, selection string) (string, error) {
	o.obs.Stage(models.StageIdle, nil)
	if strings.TrimSpace(reporterContext) == "" && strings.TrimSpace(selection) == "" {
		return "", o.fail(models.ErrContentMissing)
	}

	o.obs.Stage(models.StageExtracting, nil)
	draft, err := ext.Extract(ctx, reporterContext, selection)
	if err != nil {
		return "", o.fail(err)
	}
	return o.BuildAndSubmit(ctx, draft)
}

// BuildAndSubmit resolves draft into a creation request, submits it and
// returns the URL of the new issue.
func (o *Orchestrator) BuildAndSubmit(ctx context.Context, draft models.ParsedDraft) (string, error) {
	req, err := o.Build(ctx, draft)
	if err != nil {
		return "", err
	}
	return o.Submit(ctx, req)
}

// Build resolves every name in draft and assembles the creation request
// without submitting it. The team is resolved first; when it cannot be
// resolved Build fails with models.ErrTeamUnresolved.
func (o *Orchestrator) Build(ctx context.Context, draft models.ParsedDraft) (models.CreationRequest, error) {
	ctx, span := telemetry.Tracer("resolve").Start(ctx, "orchestrator.build")
	defer span.End()

	o.obs.Stage(models.StageTeamResolving, nil)
	teamID, err := o.resolver.ResolveByExactName(ctx, models.KindTeam, draft.Team, "")
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return models.CreationRequest{}, o.fail(err)
	}
	if teamID == nil {
		span.SetStatus(codes.Error, "team unresolved")
		return models.CreationRequest{}, o.fail(models.ErrTeamUnresolved)
	}
	span.SetAttributes(attribute.String("quill.team_id", *teamID))

	req, err := models.NewCreationRequest(draft, *teamID)
	if err != nil {
		return models.CreationRequest{}, o.fail(err)
	}

	o.obs.Stage(models.StageParallelResolving, nil)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := o.resolver.ResolveByExactName(gctx, models.KindProject, draft.Project, *teamID)
		req.ProjectID = id
		return err
	})
	g.Go(func() error {
		id, err := o.resolver.ResolveCycle(gctx, draft.Cycle, teamID)
		req.CycleID = id
		return err
	})
	g.Go(func() error {
		id, err := o.resolver.ResolveAssignee(gctx, draft.Owner, *teamID)
		req.AssigneeID = id
		return err
	})
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return models.CreationRequest{}, o.fail(err)
	}

	return req, nil
}

// Submit sends req to the tracker and returns the issue URL.
func (o *Orchestrator) Submit(ctx context.Context, req models.CreationRequest) (string, error) {
	ctx, span := telemetry.Tracer("resolve").Start(ctx, "orchestrator.submit")
	defer span.End()

	o.obs.Stage(models.StageSubmitting, nil)
	url, err := o.dir.CreateIssue(ctx, req)
	if err != nil {
		if !errors.Is(err, models.ErrIssueCreateFailed) && !errors.Is(err, models.ErrIssueCreateMalformedResponse) {
			err = fmt.Errorf("%w: %w", models.ErrIssueCreateFailed, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", o.fail(err)
	}
	if url == "" {
		return "", o.fail(models.ErrIssueCreateMalformedResponse)
	}

	span.SetAttributes(attribute.String("quill.issue_url", url))
	o.obs.Stage(models.StageSucceeded, nil)
	return url, nil
}

func (o *Orchestrator) fail(err error) error {
	o.obs.Stage(models.StageFailed, err)
	return err
}
