package models

// Outcome of a single resolution attempt.
type Outcome string

const (
	// OutcomeHit means an identifier was found.
	OutcomeHit Outcome = "hit"
	// OutcomeMiss is a soft miss: nothing matched and the field stays absent.
	OutcomeMiss Outcome = "miss"
	// OutcomeSkipped means no name was given, so no remote call was made.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFallback means the active-cycle fallback supplied the identifier.
	OutcomeFallback Outcome = "fallback"
)

// ResolutionEvent describes one resolution attempt for observability.
type ResolutionEvent struct {
	// Kind is the collection that was searched
	Kind EntityKind

	// Query is the name as extracted from the draft
	Query string

	// Outcome is the result of the attempt
	Outcome Outcome

	// ID is the resolved identifier, empty unless Outcome is hit or fallback
	ID string

	// Score is the similarity score for fuzzy resolutions, 1 for exact hits
	Score float64

	// Candidates lists the names that were available on a miss
	Candidates []string
}

// Stage is a state of the submission state machine.
type Stage string

const (
	StageIdle              Stage = "idle"
	StageExtracting        Stage = "extracting"
	StageTeamResolving     Stage = "team_resolving"
	StageParallelResolving Stage = "parallel_resolving"
	StageSubmitting        Stage = "submitting"
	StageSucceeded         Stage = "succeeded"
	StageFailed            Stage = "failed"
)
