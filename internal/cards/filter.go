package cards

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pefman/cr-calc/internal/calc"
	"github.com/pefman/cr-calc/internal/models"
)

type Role string

const (
	RoleAny     Role = ""
	RoleAttack  Role = "attack"
	RoleDefence Role = "defence"
)

// Filter narrows the card list. Zero values match everything.
type Filter struct {
	Type  models.CardType
	Role  Role
	Evo   *bool
	Query string // substring of either name, case-insensitive
}

func (f Filter) Match(c models.Card) bool {
	if f.Type != "" && c.CardType != f.Type {
		return false
	}
	switch f.Role {
	case RoleAttack:
		if !c.Attack {
			return false
		}
	case RoleDefence:
		// defence needs something to deplete
		if !c.Defence || calc.InitialHP(&c) <= 0 {
			return false
		}
	}
	if f.Evo != nil && c.IsEvo != *f.Evo {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(c.EnName), q) && !strings.Contains(strings.ToLower(c.JpName), q) {
			return false
		}
	}
	return true
}

// Find returns the cards matching f in dataset order.
func (s *Store) Find(f Filter) []models.Card {
	out := []models.Card{}
	for _, c := range s.list {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// Sort keys understood by SortCards. Any other key is treated as a stat name.
const (
	SortID     = "id"
	SortElixir = "elixir"
	SortEnName = "name"
	SortJpName = "jpname"
)

// SortCards orders list in place. Stat keys sort descending (strongest
// first), everything else ascending; ties fall back to id.
func SortCards(list []models.Card, key string) {
	switch key {
	case "", SortID:
		sort.SliceStable(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	case SortElixir:
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].ElixirCost != list[j].ElixirCost {
				return list[i].ElixirCost < list[j].ElixirCost
			}
			return list[i].ID < list[j].ID
		})
	case SortEnName:
		sortByName(list, language.English, func(c models.Card) string { return c.EnName })
	case SortJpName:
		sortByName(list, language.Japanese, func(c models.Card) string { return c.JpName })
	default:
		sort.SliceStable(list, func(i, j int) bool {
			a, b := calc.StatValue(list[i], key), calc.StatValue(list[j], key)
			if a != b {
				return a > b
			}
			return list[i].ID < list[j].ID
		})
	}
}

func sortByName(list []models.Card, tag language.Tag, name func(models.Card) string) {
	col := collate.New(tag)
	sort.SliceStable(list, func(i, j int) bool {
		if c := col.CompareString(name(list[i]), name(list[j])); c != 0 {
			return c < 0
		}
		return list[i].ID < list[j].ID
	})
}
