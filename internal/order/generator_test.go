package order

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantabuilder/fantasta/internal/models"
)

func newTestGenerator(seed int64) *Generator {
	return NewGenerator(rand.New(rand.NewSource(seed)))
}

func testCatalog() []models.Player {
	return []models.Player{
		{ID: 1, Name: "Maignan", Team: "Milan", Role: models.RoleGoalkeeper},
		{ID: 2, Name: "Sommer", Team: "Inter", Role: models.RoleGoalkeeper},
		{ID: 3, Name: "Di Gregorio", Team: "Juventus", Role: models.RoleGoalkeeper},
		{ID: 10, Name: "Bastoni", Team: "Inter", Role: models.RoleDefender},
		{ID: 11, Name: "Tomori", Team: "Milan", Role: models.RoleDefender},
		{ID: 20, Name: "Barella", Team: "Inter", Role: models.RoleMidfielder},
		{ID: 21, Name: "Zaccagni", Team: "Lazio", Role: models.RoleMidfielder},
		{ID: 30, Name: "Lautaro Martinez", Team: "Inter", Role: models.RoleForward},
		{ID: 31, Name: "Vlahovic", Team: "Juventus", Role: models.RoleForward},
	}
}

func TestGenerateAlphabeticalGroupsByRole(t *testing.T) {
	gen := newTestGenerator(1)

	ids, err := gen.Generate(testCatalog(), models.OrderPolicyAlphabetical, nil, nil)
	require.NoError(t, err)

	// Goalkeepers first, then defenders, midfielders, forwards; each group
	// in alphabetical order.
	assert.Equal(t, []int{3, 1, 2, 10, 11, 20, 21, 30, 31}, ids)
}

func TestGenerateAlphabeticalStartingLetter(t *testing.T) {
	tests := []struct {
		name   string
		letter string
		want   []int
	}{
		{
			name:   "rotates each group to the letter",
			letter: "S",
			// Goalkeepers rotate to Sommer; defenders to Tomori;
			// midfielders to Zaccagni; forwards to Vlahovic.
			want: []int{2, 3, 1, 11, 10, 21, 20, 31, 30},
		},
		{
			name:   "letter before every name leaves order unchanged",
			letter: "A",
			want:   []int{3, 1, 2, 10, 11, 20, 21, 30, 31},
		},
		{
			name:   "letter after every name leaves order unchanged",
			letter: "Z",
			// Only Zaccagni sorts at or after Z; his group rotates, the
			// others stay as sorted.
			want: []int{3, 1, 2, 10, 11, 21, 20, 30, 31},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newTestGenerator(1)
			ids, err := gen.Generate(testCatalog(), models.OrderPolicyAlphabetical, &tt.letter, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestGenerateRandomIsPermutationWithinRoleGroups(t *testing.T) {
	players := testCatalog()
	gen := newTestGenerator(42)

	ids, err := gen.Generate(players, models.OrderPolicyRandom, nil, nil)
	require.NoError(t, err)
	require.Len(t, ids, len(players))

	roleByID := make(map[int]models.Role, len(players))
	for _, p := range players {
		roleByID[p.ID] = p.Role
	}

	// Every player appears exactly once.
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		assert.False(t, seen[id], "player %d appears twice", id)
		seen[id] = true
	}

	// Role precedence survives the shuffle: all goalkeepers before all
	// defenders, and so on.
	rank := map[models.Role]int{
		models.RoleGoalkeeper: 0,
		models.RoleDefender:   1,
		models.RoleMidfielder: 2,
		models.RoleForward:    3,
	}
	for i := 1; i < len(ids); i++ {
		assert.LessOrEqual(t, rank[roleByID[ids[i-1]]], rank[roleByID[ids[i]]])
	}
}

func TestGenerateRandomIsDeterministicPerSeed(t *testing.T) {
	first, err := newTestGenerator(7).Generate(testCatalog(), models.OrderPolicyRandom, nil, nil)
	require.NoError(t, err)
	second, err := newTestGenerator(7).Generate(testCatalog(), models.OrderPolicyRandom, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateRoleFilter(t *testing.T) {
	gen := newTestGenerator(1)
	role := models.RoleDefender

	ids, err := gen.Generate(testCatalog(), models.OrderPolicyAlphabetical, nil, &role)
	require.NoError(t, err)

	assert.Equal(t, []int{10, 11}, ids)
}

func TestGenerateEmptyInput(t *testing.T) {
	gen := newTestGenerator(1)

	_, err := gen.Generate(nil, models.OrderPolicyAlphabetical, nil, nil)
	assert.ErrorIs(t, err, ErrGenerationEmpty)

	role := models.RoleGoalkeeper
	defendersOnly := []models.Player{{ID: 10, Name: "Bastoni", Role: models.RoleDefender}}
	_, err = gen.Generate(defendersOnly, models.OrderPolicyAlphabetical, nil, &role)
	assert.ErrorIs(t, err, ErrGenerationEmpty)
}

func TestGenerateAlphabeticalAccentAndCaseFolding(t *testing.T) {
	gen := newTestGenerator(1)
	players := []models.Player{
		{ID: 1, Name: "zappacosta", Role: models.RoleDefender},
		{ID: 2, Name: "Ángel", Role: models.RoleDefender},
		{ID: 3, Name: "Acerbi", Role: models.RoleDefender},
	}

	ids, err := gen.Generate(players, models.OrderPolicyAlphabetical, nil, nil)
	require.NoError(t, err)

	// Accented initials collate with their base letter; case is ignored.
	assert.Equal(t, []int{3, 2, 1}, ids)
}
