// Package cards loads the card dataset and serves lookups over the
// flattened card list.
package cards

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pefman/cr-calc/internal/models"
)

//go:embed data/cards.json
var dataFS embed.FS

// DefaultDefenceName is the card selected as defence on start and on reset.
const DefaultDefenceName = "Knight"

var ErrDuplicateID = errors.New("duplicate card id")

// Store holds the flattened dataset. It is read-only after construction.
type Store struct {
	list        []models.Card
	byID        map[int]models.Card
	defaultName string
}

// LoadEmbedded reads the dataset bundled with the binary.
func LoadEmbedded() (*Store, error) {
	f, err := dataFS.Open("data/cards.json")
	if err != nil {
		return nil, fmt.Errorf("open embedded dataset: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// LoadFile reads a dataset from disk.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a dataset and flattens it.
func Load(r io.Reader) (*Store, error) {
	var db models.Database
	if err := json.NewDecoder(r).Decode(&db); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return FromCards(Flatten(db))
}

// FromCards builds a store from an already flattened list, e.g. one fetched
// from the API.
func FromCards(list []models.Card) (*Store, error) {
	s := &Store{byID: make(map[int]models.Card, len(list)), defaultName: DefaultDefenceName}
	for _, c := range list {
		if _, dup := s.byID[c.ID]; dup {
			return nil, fmt.Errorf("%w: %d (%s)", ErrDuplicateID, c.ID, c.EnName)
		}
		if c.Stats == nil {
			c.Stats = models.Stats{}
		}
		s.byID[c.ID] = c
		s.list = append(s.list, c)
	}
	return s, nil
}

// Flatten turns the grouped dataset into one list: normal troops, buildings
// and spells, then the evo groups in the same order. Each group is ordered
// by id. Cycles only survive on evo cards and only when non-zero.
func Flatten(db models.Database) []models.Card {
	var out []models.Card
	add := func(col models.Collection, t models.CardType, evo bool) {
		group := make([]models.Card, 0, len(col))
		for _, c := range col {
			c.CardType = t
			c.IsEvo = evo
			if !evo {
				c.Cycles = 0
			}
			group = append(group, c)
		}
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
		out = append(out, group...)
	}
	add(db.Normal.Troops, models.Troop, false)
	add(db.Normal.Buildings, models.Building, false)
	add(db.Normal.Spells, models.Spell, false)
	add(db.Evo.Troops, models.Troop, true)
	add(db.Evo.Buildings, models.Building, true)
	add(db.Evo.Spells, models.Spell, true)
	return out
}

// SetDefaultDefence changes which card name DefaultDefence looks for.
func (s *Store) SetDefaultDefence(name string) {
	if strings.TrimSpace(name) != "" {
		s.defaultName = name
	}
}

// All returns the cards in dataset order. The slice is a copy.
func (s *Store) All() []models.Card {
	out := make([]models.Card, len(s.list))
	copy(out, s.list)
	return out
}

func (s *Store) Len() int { return len(s.list) }

func (s *Store) ByID(id int) (models.Card, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// ByName finds a card by English name (case-insensitive) and evo flag.
func (s *Store) ByName(name string, evo bool) (models.Card, bool) {
	for _, c := range s.list {
		if c.IsEvo == evo && strings.EqualFold(c.EnName, name) {
			return c, true
		}
	}
	return models.Card{}, false
}

// DefaultDefence is the non-evo card named like the configured default.
func (s *Store) DefaultDefence() (models.Card, bool) {
	return s.ByName(s.defaultName, false)
}
