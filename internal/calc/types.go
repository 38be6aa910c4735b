package calc

import "github.com/pefman/cr-calc/internal/models"

// MaxCount is the upper bound for how many times a damage type can be applied.
const MaxCount = 100

// HP display thresholds, as a share of the initial hit points.
const (
	LowHPThreshold    = 0.2
	MediumHPThreshold = 0.5
)

// Lookup resolves card ids. The cards store satisfies it; tests use CardMap.
type Lookup interface {
	ByID(id int) (models.Card, bool)
}

// CardMap is a Lookup over a plain map.
type CardMap map[int]models.Card

func (m CardMap) ByID(id int) (models.Card, bool) {
	c, ok := m[id]
	return c, ok
}

type HealthState string

const (
	HealthLow    HealthState = "low"
	HealthMedium HealthState = "medium"
	HealthHigh   HealthState = "high"
)

// DamageOption is one selectable damage type of a card.
type DamageOption struct {
	Key    string           `json:"key"`
	Value  models.StatValue `json:"value"`
	PerHit int              `json:"per_hit"`
}

// CardRef is the slice of a card that results carry around.
type CardRef struct {
	ID     int    `json:"id"`
	EnName string `json:"en_name"`
	JpName string `json:"jp_name"`
	IsEvo  bool   `json:"is_evo,omitempty"`
}

func refOf(c models.Card) *CardRef {
	return &CardRef{ID: c.ID, EnName: c.EnName, JpName: c.JpName, IsEvo: c.IsEvo}
}

// DamageLine is one damage type of one attack card.
type DamageLine struct {
	Key      string `json:"key"`
	PerHit   int    `json:"per_hit"`
	Count    int    `json:"count"`
	Subtotal int    `json:"subtotal"`
}

// AttackBreakdown is the contribution of a single attack selection.
type AttackBreakdown struct {
	Index    int          `json:"index"`
	CardID   int          `json:"card_id"`
	Card     *CardRef     `json:"card,omitempty"`
	Missing  bool         `json:"missing,omitempty"` // card id not in the dataset
	Lines    []DamageLine `json:"lines"`
	Subtotal int          `json:"subtotal"`
}

// Result captures the outcome of a calculation and its log.
type Result struct {
	Defence     *CardRef          `json:"defence,omitempty"`
	InitialHP   int               `json:"initial_hp"`
	TotalDamage int               `json:"total_damage"`
	RemainingHP int               `json:"remaining_hp"`
	HPPercent   float64           `json:"hp_percent"`
	HPState     HealthState       `json:"hp_state"`
	Attacks     []AttackBreakdown `json:"attacks"`
	Logs        []string          `json:"logs"`
}
