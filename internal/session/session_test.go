package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pefman/cr-calc/internal/calc"
	"github.com/pefman/cr-calc/internal/models"
)

type fakeCatalog struct {
	calc.CardMap
	defaultID int
}

func (f fakeCatalog) DefaultDefence() (models.Card, bool) {
	return f.ByID(f.defaultID)
}

func newCatalog() fakeCatalog {
	return fakeCatalog{
		defaultID: 1,
		CardMap: calc.CardMap{
			1: {ID: 1, EnName: "Knight", Stats: models.Stats{"hitpoints": models.Number(1766), "damage": models.Number(202)}},
			2: {ID: 2, EnName: "Fireball", Stats: models.Stats{"area_damage": models.Number(688)}},
			3: {ID: 3, EnName: "Giant", Stats: models.Stats{"hitpoints": models.Number(4091), "damage": models.Number(254)}},
		},
	}
}

func TestNewUsesDefaultDefence(t *testing.T) {
	s := New(newCatalog())
	st := s.Snapshot()
	assert.Equal(t, 1, st.DefenceID)
	assert.Equal(t, 1766, st.Result.RemainingHP)
	assert.Empty(t, st.Attacks)
}

func TestAttackLifecycle(t *testing.T) {
	s := New(newCatalog())

	idx, err := s.AddAttack(models.AttackSelection{CardID: 2, Counts: map[string]int{"area_damage": 1}})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1766-688, s.Snapshot().Result.RemainingHP)

	idx, err = s.AddAttack(models.AttackSelection{CardID: 1})
	require.NoError(t, err)
	n, err := s.SetCount(idx, "damage", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 688+606, s.Snapshot().Result.TotalDamage)

	require.NoError(t, s.UpdateAttack(0, models.AttackSelection{CardID: 2, Counts: map[string]int{"area_damage": 2}}))
	assert.Equal(t, 0, s.Snapshot().Result.RemainingHP, "remaining hp never goes negative")

	require.NoError(t, s.RemoveAttack(0))
	st := s.Snapshot()
	require.Len(t, st.Attacks, 1)
	assert.Equal(t, 1, st.Attacks[0].CardID)
	assert.Equal(t, 606, st.Result.TotalDamage)
}

func TestCountsAreClamped(t *testing.T) {
	s := New(newCatalog())
	_, err := s.AddAttack(models.AttackSelection{CardID: 1, Counts: map[string]int{"damage": 500}})
	require.NoError(t, err)
	assert.Equal(t, 100, s.Snapshot().Attacks[0].Counts["damage"])

	n, err := s.SetCount(0, "damage", -4)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	n, err = s.SetCount(0, "damage", 101)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
}

func TestErrors(t *testing.T) {
	s := New(newCatalog())
	assert.True(t, errors.Is(s.RemoveAttack(0), ErrIndexOutOfRange))
	assert.True(t, errors.Is(s.UpdateAttack(3, models.AttackSelection{CardID: 1}), ErrIndexOutOfRange))
	_, err := s.SetCount(-1, "damage", 1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = s.AddAttack(models.AttackSelection{CardID: 99})
	assert.True(t, errors.Is(err, ErrUnknownCard))
	assert.True(t, errors.Is(s.SetDefence(99), ErrUnknownCard))
}

func TestSetDefenceAndReset(t *testing.T) {
	s := New(newCatalog())
	require.NoError(t, s.SetDefence(3))
	_, err := s.AddAttack(models.AttackSelection{CardID: 2, Counts: map[string]int{"area_damage": 1}})
	require.NoError(t, err)
	assert.Equal(t, 4091-688, s.Snapshot().Result.RemainingHP)

	require.NoError(t, s.SetDefence(0))
	assert.Equal(t, 0, s.Snapshot().DefenceID)
	assert.Equal(t, 0, s.Snapshot().Result.RemainingHP)

	s.Reset()
	st := s.Snapshot()
	assert.Equal(t, 1, st.DefenceID)
	assert.Empty(t, st.Attacks)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New(newCatalog())
	_, err := s.AddAttack(models.AttackSelection{CardID: 1, Counts: map[string]int{"damage": 1}})
	require.NoError(t, err)
	st := s.Snapshot()
	st.Attacks[0].Counts["damage"] = 50
	assert.Equal(t, 1, s.Snapshot().Attacks[0].Counts["damage"])
}

func TestConcurrentUpdates(t *testing.T) {
	s := New(newCatalog())
	_, err := s.AddAttack(models.AttackSelection{CardID: 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = s.SetCount(0, "damage", n)
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()
	st := s.Snapshot()
	assert.Equal(t, st.Attacks[0].Counts["damage"]*202, st.Result.TotalDamage)
}

func TestManager(t *testing.T) {
	m := NewManager(newCatalog())
	id, s := m.Create()
	require.NotNil(t, s)
	got, ok := m.Get(id)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Len())

	assert.Equal(t, 0, m.Prune(time.Hour))
	m.Delete(id)
	_, ok = m.Get(id)
	assert.False(t, ok)
}

func TestManagerPruneKeepsTouchedSessions(t *testing.T) {
	m := NewManager(newCatalog())
	busy, _ := m.Create()
	idle, _ := m.Create()

	old := time.Now().Add(-time.Hour).Unix()
	m.sessions[busy].touched = old
	m.sessions[idle].touched = old
	m.Touch(busy)
	m.Touch("no-such-session")

	assert.Equal(t, 1, m.Prune(time.Minute))
	_, ok := m.Get(busy)
	assert.True(t, ok, "recently active session survives")
	_, ok = m.Get(idle)
	assert.False(t, ok)
}
