package order

import (
	"math/rand"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fantabuilder/fantasta/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Generator produces the ordered slate of player IDs for a session.
// It is pure: same inputs and same rand source give the same sequence.
type Generator struct {
	collator *collate.Collator
	rng      *rand.Rand
}

// NewGenerator creates a Generator. rng drives the random policy; pass a
// seeded source so every client of the session sees the same draw.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{
		collator: collate.New(language.Italian, collate.IgnoreCase),
		rng:      rng,
	}
}

// Generate returns a permutation of the eligible players as an ordered
// list of player IDs. When roleFilter is set only players of that role are
// eligible and role grouping is skipped; otherwise players are grouped in
// the fixed role precedence P, D, C, A.
func (g *Generator) Generate(players []models.Player, policy models.OrderPolicy, startingLetter *string, roleFilter *models.Role) ([]int, error) {
	eligible := players
	if roleFilter != nil {
		eligible = make([]models.Player, 0, len(players))
		for _, p := range players {
			if p.Role == *roleFilter {
				eligible = append(eligible, p)
			}
		}
	}
	if len(eligible) == 0 {
		return nil, ErrGenerationEmpty
	}

	var groups [][]models.Player
	if roleFilter != nil {
		groups = [][]models.Player{eligible}
	} else {
		byRole := make(map[models.Role][]models.Player, len(models.RoleOrder))
		for _, p := range eligible {
			byRole[p.Role] = append(byRole[p.Role], p)
		}
		for _, role := range models.RoleOrder {
			if g := byRole[role]; len(g) > 0 {
				groups = append(groups, g)
			}
		}
	}

	out := make([]int, 0, len(eligible))
	for _, group := range groups {
		switch policy {
		case models.OrderPolicyRandom:
			g.shuffle(group)
		default:
			g.sortAlphabetical(group)
			if startingLetter != nil {
				group = rotateToLetter(group, *startingLetter)
			}
		}
		for _, p := range group {
			out = append(out, p.ID)
		}
	}

	return out, nil
}

// sortAlphabetical sorts a group by name, locale-aware and
// case-insensitive. Ties fall back to ID so the order is total.
func (g *Generator) sortAlphabetical(group []models.Player) {
	sort.SliceStable(group, func(i, j int) bool {
		if c := g.collator.CompareString(group[i].Name, group[j].Name); c != 0 {
			return c < 0
		}
		return group[i].ID < group[j].ID
	})
}

// shuffle is a Fisher-Yates permutation of the group in place.
func (g *Generator) shuffle(group []models.Player) {
	for i := len(group) - 1; i > 0; i-- {
		j := g.rng.Intn(i + 1)
		group[i], group[j] = group[j], group[i]
	}
}

// rotateToLetter rotates a sorted group circularly so the first player
// whose name starts at or after the given letter becomes the head. When no
// player qualifies the group is left as is.
func rotateToLetter(group []models.Player, letter string) []models.Player {
	target := foldInitial(letter)
	if target == 0 {
		return group
	}
	start := -1
	for i, p := range group {
		if foldInitial(p.Name) >= target {
			start = i
			break
		}
	}
	if start <= 0 {
		return group
	}
	rotated := make([]models.Player, 0, len(group))
	rotated = append(rotated, group[start:]...)
	rotated = append(rotated, group[:start]...)
	return rotated
}

// foldInitial returns the case-folded first rune of s, or 0 when empty.
func foldInitial(s string) rune {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return 0
	}
	return unicode.ToUpper(r)
}
