// Package session keeps the mutable calculator state: one defence card and
// a list of attack selections. Derived values are recomputed on every read.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pefman/cr-calc/internal/calc"
	"github.com/pefman/cr-calc/internal/models"
)

var (
	ErrIndexOutOfRange = errors.New("attack index out of range")
	ErrUnknownCard     = errors.New("unknown card")
)

// Catalog is what a session needs from the card store.
type Catalog interface {
	calc.Lookup
	DefaultDefence() (models.Card, bool)
}

// State is a point-in-time copy of a session plus its computed result.
type State struct {
	DefenceID int                      `json:"defence_id,omitempty"`
	Attacks   []models.AttackSelection `json:"attacks"`
	Result    calc.Result              `json:"result"`
}

type Session struct {
	mu      sync.Mutex
	cards   Catalog
	defence *models.Card
	attacks []models.AttackSelection
}

// New starts a session with the default defence card and no attacks.
func New(cards Catalog) *Session {
	s := &Session{cards: cards}
	s.Reset()
	return s
}

// SetDefence selects the defence card; id 0 clears it.
func (s *Session) SetDefence(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == 0 {
		s.defence = nil
		return nil
	}
	c, ok := s.cards.ByID(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCard, id)
	}
	s.defence = &c
	return nil
}

// AddAttack appends an attack selection and returns its index.
// Counts are clamped to [0, calc.MaxCount].
func (s *Session) AddAttack(sel models.AttackSelection) (int, error) {
	if _, ok := s.cards.ByID(sel.CardID); !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCard, sel.CardID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attacks = append(s.attacks, calc.Normalize(sel))
	return len(s.attacks) - 1, nil
}

func (s *Session) RemoveAttack(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.attacks) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	s.attacks = append(s.attacks[:index], s.attacks[index+1:]...)
	return nil
}

// UpdateAttack replaces the selection at index.
func (s *Session) UpdateAttack(index int, sel models.AttackSelection) error {
	if _, ok := s.cards.ByID(sel.CardID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCard, sel.CardID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.attacks) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	s.attacks[index] = calc.Normalize(sel)
	return nil
}

// SetCount sets how many times damage type key of attack index is applied.
// The stored value is clamped and returned.
func (s *Session) SetCount(index int, key string, n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.attacks) {
		return 0, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	n = calc.ClampCount(n)
	if s.attacks[index].Counts == nil {
		s.attacks[index].Counts = map[string]int{}
	}
	s.attacks[index].Counts[key] = n
	return n, nil
}

// Reset returns to the default defence card and an empty attack list.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defence = nil
	if c, ok := s.cards.DefaultDefence(); ok {
		s.defence = &c
	}
	s.attacks = nil
}

// Snapshot copies the state and computes the result from it.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	var def *models.Card
	if s.defence != nil {
		c := *s.defence
		def = &c
	}
	attacks := make([]models.AttackSelection, len(s.attacks))
	for i, a := range s.attacks {
		attacks[i] = a.Clone()
	}
	s.mu.Unlock()

	st := State{Attacks: attacks, Result: calc.Resolve(s.cards, def, attacks)}
	if def != nil {
		st.DefenceID = def.ID
	}
	return st
}
