package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/pefman/cr-calc/internal/calc"
)

// TopCalc is the heaviest calculation seen on a day.
type TopCalc struct {
	DefenceID   int       `json:"defence_id,omitempty"`
	DefenceName string    `json:"defence_name,omitempty"`
	TotalDamage int       `json:"total_damage"`
	Attacks     int       `json:"attacks"`
	At          time.Time `json:"at"`
}

// CardUse counts how often a card appeared as an attack on a day.
type CardUse struct {
	CardID int `json:"card_id"`
	Uses   int `json:"uses"`
}

type DailyStats struct {
	Date         string    `json:"date"`
	Calculations int       `json:"calculations"`
	Top          *TopCalc  `json:"top,omitempty"`
	Cards        []CardUse `json:"cards"`
}

type day struct {
	calcs int
	top   *TopCalc
	uses  map[int]int
}

// Tracker keeps per-day usage in memory, keyed by UTC date (YYYY-MM-DD).
type Tracker struct {
	mu   sync.Mutex
	days map[string]*day
	now  func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{days: map[string]*day{}, now: time.Now}
}

func dateKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

func (t *Tracker) today(now time.Time) *day {
	key := dateKey(now)
	d := t.days[key]
	if d == nil {
		d = &day{uses: map[int]int{}}
		t.days[key] = d
	}
	return d
}

// consider replaces the day's top entry when res has more total damage,
// ties broken by the number of attacks.
func (d *day) consider(res calc.Result, now time.Time) {
	cand := &TopCalc{TotalDamage: res.TotalDamage, Attacks: len(res.Attacks), At: now.UTC()}
	if res.Defence != nil {
		cand.DefenceID = res.Defence.ID
		cand.DefenceName = res.Defence.EnName
	}
	if d.top == nil || cand.TotalDamage > d.top.TotalDamage ||
		(cand.TotalDamage == d.top.TotalDamage && cand.Attacks > d.top.Attacks) {
		d.top = cand
	}
}

// Record adds one finished calculation: it counts the calculation, one use
// of every known attack card, and competes for the day's top entry.
func (t *Tracker) Record(res calc.Result) {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.today(now)
	d.calcs++
	for _, a := range res.Attacks {
		if !a.Missing {
			d.uses[a.CardID]++
		}
	}
	d.consider(res, now)
}

// Observe only competes for the day's top entry. Live sessions call it on
// every state change.
func (t *Tracker) Observe(res calc.Result) {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.today(now).consider(res, now)
}

// AddUse counts one use of a card as an attack.
func (t *Tracker) AddUse(cardID int) {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.today(now).uses[cardID]++
}

// Finish counts a live session as one calculation. Its card uses were
// already counted with AddUse.
func (t *Tracker) Finish(res calc.Result) {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.today(now)
	d.calcs++
	d.consider(res, now)
}

// Today returns the stats for the current UTC day, most used cards first.
func (t *Tracker) Today() DailyStats {
	key := dateKey(t.now())
	t.mu.Lock()
	defer t.mu.Unlock()
	out := DailyStats{Date: key, Cards: []CardUse{}}
	d := t.days[key]
	if d == nil {
		return out
	}
	out.Calculations = d.calcs
	if d.top != nil {
		top := *d.top
		out.Top = &top
	}
	for id, n := range d.uses {
		out.Cards = append(out.Cards, CardUse{CardID: id, Uses: n})
	}
	sort.Slice(out.Cards, func(i, j int) bool {
		if out.Cards[i].Uses != out.Cards[j].Uses {
			return out.Cards[i].Uses > out.Cards[j].Uses
		}
		return out.Cards[i].CardID < out.Cards[j].CardID
	})
	return out
}
