package calc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pefman/cr-calc/internal/engine"
	"github.com/pefman/cr-calc/internal/models"
)

var hpKeys = []string{"hitpoints", "shield_hitpoints"}

// InitialHP returns the card's hit points: the first of hitpoints,
// shield_hitpoints that parses above zero. Nil cards and cards without
// either stat have 0.
func InitialHP(c *models.Card) int {
	if c == nil || c.Stats == nil {
		return 0
	}
	for _, key := range hpKeys {
		v, ok := c.Stats[key]
		if !ok {
			continue
		}
		if hp := engine.ParseDamage(v); hp > 0 {
			return hp
		}
	}
	return 0
}

// StatValue is the sortable numeric value of a stat, 0 when absent.
func StatValue(c models.Card, key string) float64 {
	v, ok := c.Stats[key]
	if !ok {
		return 0
	}
	return engine.StatNumber(v)
}

// IsDPS reports keys that describe damage per second rather than per hit.
func IsDPS(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "dps") || strings.Contains(k, "damage_per_second")
}

// IsDamageKey reports whether key is a per-hit damage (or heal) stat.
func IsDamageKey(key string) bool {
	if IsDPS(key) {
		return false
	}
	k := strings.ToLower(key)
	return strings.Contains(k, "damage") || strings.Contains(k, "heal")
}

// DamageOptions lists the damage types a card can contribute, sorted by key.
// Values that do not parse to a positive number are left out.
func DamageOptions(c models.Card) []DamageOption {
	out := []DamageOption{}
	for key, v := range c.Stats {
		if !IsDamageKey(key) {
			continue
		}
		if v.Kind != models.StatNumber && v.Kind != models.StatString {
			continue
		}
		if per := engine.ParseDamage(v); per > 0 {
			out = append(out, DamageOption{Key: key, Value: v, PerHit: per})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ClampCount bounds an applied count to [0, MaxCount].
func ClampCount(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}

// Normalize copies sel with every count clamped.
func Normalize(sel models.AttackSelection) models.AttackSelection {
	out := sel.Clone()
	for k, v := range out.Counts {
		out.Counts[k] = ClampCount(v)
	}
	return out
}

// TotalDamage sums per-hit damage times count over every attack selection.
// Unknown cards, keys the card lacks and DPS keys add nothing.
func TotalDamage(cards Lookup, attacks []models.AttackSelection) int {
	total := 0
	for _, a := range attacks {
		c, ok := cards.ByID(a.CardID)
		if !ok {
			continue
		}
		for key, count := range a.Counts {
			v, has := c.Stats[key]
			if !has || IsDPS(key) {
				continue
			}
			total += engine.ParseDamage(v) * ClampCount(count)
		}
	}
	return total
}

// RemainingHP is the defence card's hit points after total damage, never
// below zero. No defence card, or one without hit points, leaves 0.
func RemainingHP(defence *models.Card, total int) int {
	if defence == nil {
		return 0
	}
	hp := InitialHP(defence)
	if hp <= 0 {
		return 0
	}
	return max(0, hp-total)
}

// HPPercent is remaining as a percentage of initial, 0 when initial is not positive.
func HPPercent(remaining, initial int) float64 {
	if initial <= 0 {
		return 0
	}
	return float64(remaining) / float64(initial) * 100
}

// HPState buckets a percentage (clamped to 0..100) into low/medium/high.
func HPState(percent float64) HealthState {
	p := min(100, max(0, percent))
	switch {
	case p <= LowHPThreshold*100:
		return HealthLow
	case p <= MediumHPThreshold*100:
		return HealthMedium
	default:
		return HealthHigh
	}
}

// Resolve computes totals for a defence card and a list of attacks and logs
// each step. Totals always equal TotalDamage/RemainingHP for the same input.
func Resolve(cards Lookup, defence *models.Card, attacks []models.AttackSelection) Result {
	res := Result{Attacks: []AttackBreakdown{}, Logs: []string{}}

	if defence != nil {
		res.Defence = refOf(*defence)
		res.InitialHP = InitialHP(defence)
		res.Logs = append(res.Logs, fmt.Sprintf("Defence: %s (id %d) HP %d", defence.EnName, defence.ID, res.InitialHP))
	} else {
		res.Logs = append(res.Logs, "Defence: none selected")
	}

	for i, a := range attacks {
		br := AttackBreakdown{Index: i, CardID: a.CardID, Lines: []DamageLine{}}
		c, ok := cards.ByID(a.CardID)
		if !ok {
			br.Missing = true
			res.Logs = append(res.Logs, fmt.Sprintf("Attack %d: card id %d not found, skipped", i+1, a.CardID))
			res.Attacks = append(res.Attacks, br)
			continue
		}
		br.Card = refOf(c)

		keys := make([]string, 0, len(a.Counts))
		for k := range a.Counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			v, has := c.Stats[key]
			if !has || IsDPS(key) {
				continue
			}
			count := ClampCount(a.Counts[key])
			per := engine.ParseDamage(v)
			line := DamageLine{Key: key, PerHit: per, Count: count, Subtotal: per * count}
			br.Lines = append(br.Lines, line)
			br.Subtotal += line.Subtotal
			if count > 0 {
				res.Logs = append(res.Logs, fmt.Sprintf("Attack %d: %s %s %d x%d = %d", i+1, c.EnName, key, per, count, line.Subtotal))
			}
		}
		res.TotalDamage += br.Subtotal
		res.Attacks = append(res.Attacks, br)
	}

	res.RemainingHP = RemainingHP(defence, res.TotalDamage)
	res.HPPercent = HPPercent(res.RemainingHP, res.InitialHP)
	res.HPState = HPState(res.HPPercent)
	res.Logs = append(res.Logs, fmt.Sprintf("Total Damage: %d, Defender HP left: %d", res.TotalDamage, res.RemainingHP))
	return res
}
