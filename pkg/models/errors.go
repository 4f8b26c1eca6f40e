package models

import "errors"

// Fatal failure kinds of a submission. Callers wrap them with fmt.Errorf("%w")
// and test with errors.Is.
var (
	// ErrContentMissing means neither a selection nor instructions were given.
	ErrContentMissing = errors.New("content required: add selected text or extra context so the AI has material to work with")

	// ErrMissingCredentials means the AI or tracker configuration lacks a key.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrAIRequestFailed means the generative service call errored or returned a non-success status.
	ErrAIRequestFailed = errors.New("AI request failed")

	// ErrAIResponseUnparsable means the AI response did not parse as a JSON object.
	ErrAIResponseUnparsable = errors.New("AI returned content that was not valid JSON")

	// ErrTeamUnresolved means no tracker team could be resolved from the draft.
	ErrTeamUnresolved = errors.New("unable to resolve a tracker team; mention the team name explicitly in the additional context")

	// ErrDirectoryRequestFailed means a directory listing call failed.
	ErrDirectoryRequestFailed = errors.New("directory request failed")

	// ErrIssueCreateFailed means the creation mutation errored or returned a non-success status.
	ErrIssueCreateFailed = errors.New("issue creation failed")

	// ErrIssueCreateMalformedResponse means creation succeeded but the response lacked the issue URL.
	ErrIssueCreateMalformedResponse = errors.New("tracker returned an unexpected response")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrContentMissing, "ContentMissing"},
	{ErrMissingCredentials, "MissingCredentials"},
	{ErrAIRequestFailed, "AIRequestFailed"},
	{ErrAIResponseUnparsable, "AIResponseUnparsable"},
	{ErrTeamUnresolved, "TeamUnresolved"},
	{ErrDirectoryRequestFailed, "DirectoryRequestFailed"},
	{ErrIssueCreateMalformedResponse, "IssueCreateMalformedResponse"},
	{ErrIssueCreateFailed, "IssueCreateFailed"},
}

// KindOf returns the failure kind name of err, or "Unknown".
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Unknown"
}
