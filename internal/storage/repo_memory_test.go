package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pefman/cr-calc/internal/models"
)

func TestMemoryRepo_SaveGetListDelete(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	s1, err := repo.Save(ctx, Scenario{Name: "  fireball knight ", DefenceID: 1, Attacks: []models.AttackSelection{
		{CardID: 201, Counts: map[string]int{"area_damage": 1}},
	}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), s1.ID)
	assert.Equal(t, "fireball knight", s1.Name)
	assert.False(t, s1.CreatedAt.IsZero())

	got, err := repo.Get(ctx, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, s1, got)

	got.Attacks[0].Counts["area_damage"] = 9
	again, err := repo.Get(ctx, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Attacks[0].Counts["area_damage"])

	s2, err := repo.Save(ctx, Scenario{Name: "empty"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), s2.ID)
	assert.NotNil(t, s2.Attacks)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repo.Delete(ctx, s1.ID))
	_, err = repo.Get(ctx, s1.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, s1.ID), ErrNotFound))
}

func TestValidate(t *testing.T) {
	_, err := Validate(Scenario{Name: " "})
	assert.Error(t, err)
	_, err = Validate(Scenario{Name: "x", DefenceID: -1})
	assert.Error(t, err)
}
