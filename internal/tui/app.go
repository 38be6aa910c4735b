// Package tui is a terminal front end for the damage calculator. The left
// pane lists cards, the right pane shows the defence card, the attack list
// and the remaining hit points.
package tui

import (
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/language"

	"github.com/pefman/cr-calc/internal/calc"
	"github.com/pefman/cr-calc/internal/cards"
	"github.com/pefman/cr-calc/internal/locale"
	"github.com/pefman/cr-calc/internal/models"
	"github.com/pefman/cr-calc/internal/session"
)

type pane int

const (
	paneCards pane = iota
	paneAttacks
)

// App holds the terminal UI state on top of a calculator session.
type App struct {
	screen tcell.Screen
	store  *cards.Store
	sess   *session.Session
	lang   language.Tag

	focus     pane
	list      []models.Card
	cardPos   int
	cardTop   int
	attackPos int
	optPos    int

	query     string
	filtering bool
	status    string
}

func New(screen tcell.Screen, store *cards.Store, lang language.Tag) *App {
	a := &App{
		screen: screen,
		store:  store,
		sess:   session.New(store),
		lang:   lang,
	}
	a.refilter()
	return a
}

// Run draws and handles input until the user quits or the screen closes.
func (a *App) Run() {
	a.Draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventKey:
			if a.HandleKey(ev) {
				return
			}
		}
		a.Draw()
	}
}

// State exposes the current session state.
func (a *App) State() session.State { return a.sess.Snapshot() }

func (a *App) refilter() {
	a.list = a.store.Find(cards.Filter{Query: a.query})
	if a.cardPos >= len(a.list) {
		a.cardPos = max(0, len(a.list)-1)
	}
	a.cardTop = 0
}

func (a *App) selectedCard() (models.Card, bool) {
	if a.cardPos < 0 || a.cardPos >= len(a.list) {
		return models.Card{}, false
	}
	return a.list[a.cardPos], true
}

// options returns the damage types of the attack at index.
func (a *App) options(st session.State, index int) []calc.DamageOption {
	if index < 0 || index >= len(st.Attacks) {
		return nil
	}
	c, ok := a.store.ByID(st.Attacks[index].CardID)
	if !ok {
		return nil
	}
	return calc.DamageOptions(c)
}

// HandleKey applies one key press and reports whether the app should quit.
func (a *App) HandleKey(ev *tcell.EventKey) bool {
	if a.filtering {
		a.handleFilterKey(ev)
		return false
	}
	a.status = ""
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyTab:
		if a.focus == paneCards {
			a.focus = paneAttacks
		} else {
			a.focus = paneCards
		}
		return false
	case tcell.KeyUp:
		a.move(-1)
		return false
	case tcell.KeyDown:
		a.move(1)
		return false
	case tcell.KeyLeft:
		a.moveOption(-1)
		return false
	case tcell.KeyRight:
		a.moveOption(1)
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q', 'Q':
		return true
	case 'k':
		a.move(-1)
	case 'j':
		a.move(1)
	case 'h':
		a.moveOption(-1)
	case 'l':
		a.moveOption(1)
	case '/':
		a.filtering = true
	case 'd':
		a.setDefence()
	case 'a':
		a.addAttack()
	case '+', '=':
		a.bumpCount(1)
	case '-':
		a.bumpCount(-1)
	case 'x':
		a.removeAttack()
	case 'r':
		a.sess.Reset()
		a.attackPos, a.optPos = 0, 0
		a.status = "reset"
	}
	return false
}

func (a *App) handleFilterKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		a.filtering = false
	case tcell.KeyEscape:
		a.filtering = false
		a.query = ""
		a.refilter()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(a.query); len(r) > 0 {
			a.query = string(r[:len(r)-1])
			a.refilter()
		}
	case tcell.KeyRune:
		a.query += string(ev.Rune())
		a.cardPos = 0
		a.refilter()
	}
}

func (a *App) move(delta int) {
	if a.focus == paneCards {
		if len(a.list) == 0 {
			return
		}
		a.cardPos = min(len(a.list)-1, max(0, a.cardPos+delta))
		return
	}
	n := len(a.sess.Snapshot().Attacks)
	if n == 0 {
		return
	}
	a.attackPos = min(n-1, max(0, a.attackPos+delta))
	a.optPos = 0
}

func (a *App) moveOption(delta int) {
	opts := a.options(a.sess.Snapshot(), a.attackPos)
	if len(opts) == 0 {
		return
	}
	a.optPos = (a.optPos + delta + len(opts)) % len(opts)
}

func (a *App) setDefence() {
	c, ok := a.selectedCard()
	if !ok {
		return
	}
	if calc.InitialHP(&c) <= 0 {
		a.status = c.EnName + " has no hit points"
		return
	}
	if err := a.sess.SetDefence(c.ID); err != nil {
		log.Printf("tui: set defence id=%d err=%v", c.ID, err)
		a.status = err.Error()
		return
	}
	a.status = "defence: " + c.EnName
}

// addAttack adds the selected card with its first damage type applied once.
func (a *App) addAttack() {
	c, ok := a.selectedCard()
	if !ok {
		return
	}
	opts := calc.DamageOptions(c)
	if len(opts) == 0 {
		a.status = c.EnName + " has no damage stats"
		return
	}
	idx, err := a.sess.AddAttack(models.AttackSelection{
		CardID: c.ID,
		Counts: map[string]int{opts[0].Key: 1},
	})
	if err != nil {
		log.Printf("tui: add attack id=%d err=%v", c.ID, err)
		a.status = err.Error()
		return
	}
	a.attackPos, a.optPos = idx, 0
	a.status = "attack: " + c.EnName
}

func (a *App) bumpCount(delta int) {
	st := a.sess.Snapshot()
	opts := a.options(st, a.attackPos)
	if len(opts) == 0 {
		return
	}
	key := opts[min(a.optPos, len(opts)-1)].Key
	cur := st.Attacks[a.attackPos].Counts[key]
	if _, err := a.sess.SetCount(a.attackPos, key, cur+delta); err != nil {
		a.status = err.Error()
	}
}

func (a *App) removeAttack() {
	if err := a.sess.RemoveAttack(a.attackPos); err != nil {
		a.status = err.Error()
		return
	}
	if n := len(a.sess.Snapshot().Attacks); a.attackPos >= n {
		a.attackPos = max(0, n-1)
	}
	a.optPos = 0
}

func (a *App) name(c calc.CardRef) string {
	n := c.EnName
	if a.lang == language.Japanese && c.JpName != "" {
		n = c.JpName
	}
	if c.IsEvo {
		n += " (evo)"
	}
	return n
}

// Draw renders the whole screen.
func (a *App) Draw() {
	scr := a.screen
	scr.Clear()
	w, h := scr.Size()
	split := min(w/2, 40)
	st := a.sess.Snapshot()

	a.drawCards(0, split, h-1)
	a.drawResult(split+1, w, h-1, st)

	footer := "↑↓ move  tab pane  / filter  d defence  a attack  ←→ type  +/- count  x remove  r reset  q quit"
	if a.status != "" {
		footer = a.status
	}
	putText(scr, 0, h-1, w, footer, styleDim)
	scr.Show()
}

func (a *App) drawCards(x0, x1, bottom int) {
	scr := a.screen
	title := "Cards"
	if a.filtering || a.query != "" {
		title = "Cards /" + a.query
		if a.filtering {
			title += "_"
		}
	}
	st := styleTitle
	if a.focus == paneCards {
		st = st.Underline(true)
	}
	putText(scr, x0, 0, x1, title, st)

	rows := bottom - 1
	if rows <= 0 {
		return
	}
	if a.cardPos < a.cardTop {
		a.cardTop = a.cardPos
	}
	if a.cardPos >= a.cardTop+rows {
		a.cardTop = a.cardPos - rows + 1
	}
	for i := 0; i < rows && a.cardTop+i < len(a.list); i++ {
		c := a.list[a.cardTop+i]
		line := fmt.Sprintf("%3d %d %s", c.ID, c.ElixirCost, a.name(calc.CardRef{EnName: c.EnName, JpName: c.JpName, IsEvo: c.IsEvo}))
		style := styleDefault
		if a.cardTop+i == a.cardPos {
			style = styleSelected
		}
		putText(scr, x0, i+1, x1, fit(line, x1-x0), style)
	}
}

func (a *App) drawResult(x0, x1, bottom int, st session.State) {
	scr := a.screen
	res := st.Result
	y := 0

	def := "Defence: none"
	if res.Defence != nil {
		def = fmt.Sprintf("Defence: %s  HP %d", a.name(*res.Defence), res.InitialHP)
	}
	putText(scr, x0, y, x1, def, styleDefence)
	y++

	barW := max(0, x1-x0-12)
	x := putText(scr, x0, y, x1, hpBar(res.HPPercent, barW), hpStyle(res.HPState))
	putText(scr, x+1, y, x1, fmt.Sprintf("%d", res.RemainingHP), styleTitle)
	y++
	putText(scr, x0, y, x1, fmt.Sprintf("Total damage %d", res.TotalDamage), styleDefault)
	y += 2

	title := styleTitle
	if a.focus == paneAttacks {
		title = title.Underline(true)
	}
	putText(scr, x0, y, x1, "Attacks", title)
	y++

	for i, br := range res.Attacks {
		if y >= bottom {
			break
		}
		name := fmt.Sprintf("#%d missing card %d", i+1, br.CardID)
		if br.Card != nil {
			name = fmt.Sprintf("%s  %d", a.name(*br.Card), br.Subtotal)
		}
		style := styleDefault
		if a.focus == paneAttacks && i == a.attackPos {
			style = styleSelected
		}
		putText(scr, x0, y, x1, fit(name, x1-x0), style)
		y++

		for j, opt := range a.options(st, i) {
			if y >= bottom {
				break
			}
			n := st.Attacks[i].Counts[opt.Key]
			line := fmt.Sprintf("  %s %d x%d", locale.Label(opt.Key, a.lang), opt.PerHit, n)
			s := styleDim
			if a.focus == paneAttacks && i == a.attackPos && j == a.optPos {
				s = styleDefault.Bold(true)
			}
			putText(scr, x0, y, x1, line, s)
			y++
		}
	}
}
