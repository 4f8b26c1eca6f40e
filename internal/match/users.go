package match

import (
	"strings"

	"github.com/danielolaszy/quill/pkg/models"
)

var slugReplacer = strings.NewReplacer(".", "", "_", "", "-", "")

// NormalizeQuery strips one leading "@", trims and folds case.
func NormalizeQuery(name string) string {
	name = strings.TrimPrefix(name, "@")
	return strings.ToLower(strings.TrimSpace(name))
}

// Slug folds case and drops whitespace, periods, underscores and hyphens so
// that handles like "first.last" and "FirstLast" compare equal.
func Slug(s string) string {
	s = strings.Join(strings.Fields(s), "")
	return strings.ToLower(slugReplacer.Replace(s))
}

// Aliases returns the trimmed, case-folded names a user can be referred to by:
// display name, full name, email and the email local part. Empty values are dropped.
func Aliases(u models.User) []string {
	raw := []string{models.Value(u.DisplayName), models.Value(u.Name)}
	if u.Email != nil {
		email := *u.Email
		raw = append(raw, email)
		if at := strings.Index(email, "@"); at >= 0 {
			raw = append(raw, email[:at])
		}
	}

	aliases := make([]string, 0, len(raw))
	for _, v := range raw {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			aliases = append(aliases, v)
		}
	}
	return aliases
}

// UserScore is the best score of any alias of u, or its slug, against the
// normalized query and the query's slug.
func UserScore(query string, u models.User) float64 {
	querySlug := Slug(query)

	best := 0.0
	for _, alias := range Aliases(u) {
		for _, candidate := range []string{alias, Slug(alias)} {
			if candidate == "" {
				continue
			}
			s := max(Score(candidate, query), Score(candidate, querySlug))
			if s > best {
				best = s
			}
		}
	}
	return best
}

// BestUser picks the user whose aliases score highest against name. Ties keep
// the earlier user. ok is false when the directory is empty, the query is blank,
// or the best score is below MinConfidence; score is reported either way.
func BestUser(name string, users []models.User) (id string, score float64, ok bool) {
	query := NormalizeQuery(name)
	if query == "" {
		return "", 0, false
	}

	bestIdx := -1
	for i, u := range users {
		s := UserScore(query, u)
		if bestIdx < 0 || s > score {
			bestIdx, score = i, s
		}
	}

	if bestIdx < 0 || score < MinConfidence {
		return "", score, false
	}
	return users[bestIdx].ID, score, true
}
