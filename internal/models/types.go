package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ========================= Domain Models =========================
// Card records as they come out of the dataset, plus the selection shapes
// the calculator works on.

type CardType string

const (
	Troop    CardType = "Troop"
	Building CardType = "Building"
	Spell    CardType = "Spell"
)

type Rarity string

const (
	Common    Rarity = "COMMON"
	Rare      Rarity = "RARE"
	Epic      Rarity = "EPIC"
	Legendary Rarity = "LEGENDARY"
	Champion  Rarity = "CHAMPION"
)

// StatKind tells which variant a StatValue holds.
type StatKind uint8

const (
	StatNone StatKind = iota
	StatNumber
	StatString
	StatBool
)

// StatValue is one entry of a card's stats. The dataset mixes encodings
// ("64 x5", "90-1057", 1766, "1.2 sec", true), so the raw form is kept and
// interpreted by the engine package.
type StatValue struct {
	Kind StatKind
	Num  float64
	Str  string
	Bool bool
}

func Number(v float64) StatValue { return StatValue{Kind: StatNumber, Num: v} }
func Text(s string) StatValue    { return StatValue{Kind: StatString, Str: s} }
func Flag(b bool) StatValue      { return StatValue{Kind: StatBool, Bool: b} }

func (v StatValue) IsZero() bool { return v.Kind == StatNone }

// String renders the value the way it appeared in the dataset.
func (v StatValue) String() string {
	switch v.Kind {
	case StatNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case StatString:
		return v.Str
	case StatBool:
		return strconv.FormatBool(v.Bool)
	}
	return ""
}

func (v StatValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case StatNumber:
		return json.Marshal(v.Num)
	case StatString:
		return json.Marshal(v.Str)
	case StatBool:
		return json.Marshal(v.Bool)
	}
	return []byte("null"), nil
}

func (v *StatValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = StatValue{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Flag(b)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("stat value %s: %w", data, err)
		}
		*v = Number(n)
	}
	return nil
}

// Stats is the sparse stat mapping of a card (hitpoints, damage, area_damage, ...).
type Stats map[string]StatValue

func (s Stats) Has(key string) bool {
	_, ok := s[key]
	return ok
}

type Card struct {
	ID         int      `json:"id"`
	EnName     string   `json:"EnName"`
	JpName     string   `json:"JpName"`
	ElixirCost int      `json:"ElixirCost"`
	Rarity     Rarity   `json:"rarity"`
	Attack     bool     `json:"attack"`
	Defence    bool     `json:"defence"`
	Stats      Stats    `json:"stats"`
	CardType   CardType `json:"cardType"`
	IsEvo      bool     `json:"isEvo"`
	Cycles     int      `json:"cycles,omitempty"` // evo cards only
}

// ========================= Dataset shapes =========================
// The JSON file groups cards by Normal/Evo and then by type; the map key is
// only an identifier inside the file, the card's own id is authoritative.

type Collection map[string]Card

type CardGroup struct {
	Troops    Collection `json:"Troops"`
	Buildings Collection `json:"Buildings"`
	Spells    Collection `json:"Spells"`
}

type Database struct {
	Normal CardGroup `json:"Normal"`
	Evo    CardGroup `json:"Evo"`
}

// ========================= Selections =========================

// AttackSelection references an attack card and how many times each of its
// damage types is applied.
type AttackSelection struct {
	CardID int            `json:"card_id"`
	Counts map[string]int `json:"counts"`
}

// Clone returns a copy that does not share the counts map.
func (a AttackSelection) Clone() AttackSelection {
	out := AttackSelection{CardID: a.CardID, Counts: make(map[string]int, len(a.Counts))}
	for k, v := range a.Counts {
		out.Counts[k] = v
	}
	return out
}

// CalcRequest is the wire shape of a one-shot calculation.
// DefenceID 0 means no defence card.
type CalcRequest struct {
	DefenceID int               `json:"defence_id,omitempty"`
	Attacks   []AttackSelection `json:"attacks"`
}
