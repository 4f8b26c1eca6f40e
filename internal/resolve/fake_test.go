package resolve

import (
	"context"
	"sync"

	"github.com/danielolaszy/quill/pkg/models"
)

// fakeDirectory is an in-memory Directory that counts calls.
type fakeDirectory struct {
	mu sync.Mutex

	entities map[models.EntityKind][]models.Entity
	users    []models.User
	active   map[string]*models.Entity

	listErr   map[models.EntityKind]error
	usersErr  error
	activeErr error
	createErr error
	createURL string

	listCalls   map[models.EntityKind]int
	scopes      map[models.EntityKind]string
	userCalls   int
	activeCalls int
	created     []models.CreationRequest
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		entities:  map[models.EntityKind][]models.Entity{},
		active:    map[string]*models.Entity{},
		listErr:   map[models.EntityKind]error{},
		listCalls: map[models.EntityKind]int{},
		scopes:    map[models.EntityKind]string{},
		createURL: "https://linear.app/acme/issue/ENG-1",
	}
}

func (f *fakeDirectory) ListEntities(_ context.Context, kind models.EntityKind, scope string) ([]models.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls[kind]++
	f.scopes[kind] = scope
	if err := f.listErr[kind]; err != nil {
		return nil, err
	}
	return f.entities[kind], nil
}

func (f *fakeDirectory) ListUsers(context.Context, string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	return f.users, f.usersErr
}

func (f *fakeDirectory) ActiveCycle(_ context.Context, teamID string) (*models.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activeCalls++
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	return f.active[teamID], nil
}

func (f *fakeDirectory) CreateIssue(_ context.Context, req models.CreationRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.createURL, nil
}

// recordingObserver collects events; resolutions arrive from several goroutines.
type recordingObserver struct {
	mu     sync.Mutex
	events []models.ResolutionEvent
	stages []models.Stage
	errs   []error
}

func (r *recordingObserver) Resolution(ev models.ResolutionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingObserver) Stage(stage models.Stage, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
	if err != nil {
		r.errs = append(r.errs, err)
	}
}

func (r *recordingObserver) eventsFor(kind models.EntityKind) []models.ResolutionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ResolutionEvent
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
