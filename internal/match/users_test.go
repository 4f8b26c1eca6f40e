package match

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danielolaszy/quill/pkg/models"
)

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "yan", NormalizeQuery("@yan"))
	assert.Equal(t, "yan soul", NormalizeQuery("  Yan Soul "))
	assert.Equal(t, "@yan", NormalizeQuery("@@Yan"))
	assert.Equal(t, "", NormalizeQuery("@ "))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "firstlast", Slug("First.Last"))
	assert.Equal(t, "firstlast", Slug("first_last"))
	assert.Equal(t, "firstlast", Slug("First Last"))
	assert.Equal(t, "firstlast", Slug("first-last"))
	assert.Equal(t, "", Slug(" ._- "))
}

func TestAliases(t *testing.T) {
	u := models.User{
		ID:          "U1",
		Name:        models.String("Yan Soul"),
		DisplayName: models.String("  YanS "),
		Email:       models.String("YanSoul@x.com"),
	}
	assert.Equal(t, []string{"yans", "yan soul", "yansoul@x.com", "yansoul"}, Aliases(u))

	assert.Empty(t, Aliases(models.User{ID: "U2", Name: models.String("   ")}))
}

func TestBestUser(t *testing.T) {
	yan := models.User{ID: "U1", DisplayName: models.String("Yan Soul"), Email: models.String("yansoul@x.com")}

	tests := []struct {
		name      string
		query     string
		users     []models.User
		wantID    string
		wantOK    bool
		wantScore float64
	}{
		{
			name:      "Email local part exact",
			query:     "yansoul",
			users:     []models.User{yan},
			wantID:    "U1",
			wantOK:    true,
			wantScore: 1.0,
		},
		{
			name:      "At-prefixed partial name is a prefix match",
			query:     "@yan",
			users:     []models.User{yan},
			wantID:    "U1",
			wantOK:    true,
			wantScore: 0.85,
		},
		{
			name:      "Structured handle matches via slug",
			query:     "First.Last",
			users:     []models.User{{ID: "U9", Name: models.String("First Last")}},
			wantID:    "U9",
			wantOK:    true,
			wantScore: 1.0,
		},
		{
			name:      "Unrelated name stays unresolved",
			query:     "bob",
			users:     []models.User{yan},
			wantOK:    false,
			wantScore: 1.0 / 7.0, // "bob" vs "yansoul": six edits over seven runes
		},
		{
			name:  "Empty directory",
			query: "yan",
		},
		{
			name:  "Blank query",
			query: " @ ",
			users: []models.User{yan},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, score, ok := BestUser(tt.query, tt.users)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
		})
	}
}

func TestBestUserThresholdBoundary(t *testing.T) {
	query := "abcdefghijklmnopqrst"

	// 9 shared leading runes, 11 substitutions over 20 runes: exactly 9/20.
	atThreshold := models.User{ID: "AT", DisplayName: models.String("abcdefghi" + strings.Repeat("z", 11))}
	// 8 shared leading runes, 12 substitutions: 8/20.
	belowThreshold := models.User{ID: "BELOW", DisplayName: models.String("abcdefgh" + strings.Repeat("z", 12))}

	id, score, ok := BestUser(query, []models.User{atThreshold})
	assert.True(t, ok)
	assert.Equal(t, "AT", id)
	assert.Equal(t, MinConfidence, score)

	id, score, ok = BestUser(query, []models.User{belowThreshold})
	assert.False(t, ok)
	assert.Empty(t, id)
	assert.InDelta(t, 0.40, score, 1e-9)
	assert.Less(t, score, MinConfidence)
}

func TestBestUserTiesKeepListingOrder(t *testing.T) {
	users := []models.User{
		{ID: "FIRST", DisplayName: models.String("Alex")},
		{ID: "SECOND", Name: models.String("alex")},
	}

	id, score, ok := BestUser("alex", users)
	assert.True(t, ok)
	assert.Equal(t, "FIRST", id)
	assert.Equal(t, 1.0, score)
}

func TestBestUserPrefersStrongerMatch(t *testing.T) {
	users := []models.User{
		{ID: "WEAK", DisplayName: models.String("Yanis Soulier")},
		{ID: "STRONG", Email: models.String("yan@x.com")},
	}

	id, _, ok := BestUser("Yan", users)
	assert.True(t, ok)
	assert.Equal(t, "STRONG", id)
}
