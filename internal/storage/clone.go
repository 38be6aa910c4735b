package storage

import "github.com/pefman/cr-calc/internal/models"

func cloneAttacks(in []models.AttackSelection) []models.AttackSelection {
	out := make([]models.AttackSelection, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
