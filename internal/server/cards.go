package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/text/language"

	"github.com/pefman/cr-calc/internal/calc"
	"github.com/pefman/cr-calc/internal/cards"
	"github.com/pefman/cr-calc/internal/engine"
	"github.com/pefman/cr-calc/internal/locale"
	"github.com/pefman/cr-calc/internal/models"
)

// cardView adds the derived fields a client needs for display.
type cardView struct {
	models.Card
	Image string `json:"image"`
	HP    int    `json:"hp"`
}

func viewOf(c models.Card) cardView {
	return cardView{Card: c, Image: engine.ImageFilename(c), HP: calc.InitialHP(&c)}
}

type damageOptionView struct {
	calc.DamageOption
	Label string `json:"label"`
	Known bool   `json:"known"`
}

// GET /api/cards?type=&role=&evo=&q=&sort=
func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := cards.Filter{Query: q.Get("q")}
	switch strings.ToLower(q.Get("type")) {
	case "":
	case "troop":
		f.Type = models.Troop
	case "building":
		f.Type = models.Building
	case "spell":
		f.Type = models.Spell
	default:
		writeError(w, http.StatusBadRequest, "type must be troop, building or spell")
		return
	}
	switch role := cards.Role(strings.ToLower(q.Get("role"))); role {
	case cards.RoleAny, cards.RoleAttack, cards.RoleDefence:
		f.Role = role
	default:
		writeError(w, http.StatusBadRequest, "role must be attack or defence")
		return
	}
	if v := q.Get("evo"); v != "" {
		evo, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "evo must be a boolean")
			return
		}
		f.Evo = &evo
	}

	list := s.cards.Find(f)
	cards.SortCards(list, q.Get("sort"))
	out := make([]cardView, len(list))
	for i, c := range list {
		out[i] = viewOf(c)
	}
	writeJSON(w, out)
}

// GET /api/cards/{id}
func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cardFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, viewOf(c))
}

// GET /api/cards/{id}/damage-options?lang=
func (s *Server) handleDamageOptions(w http.ResponseWriter, r *http.Request) {
	c, ok := s.cardFromPath(w, r)
	if !ok {
		return
	}
	tag := requestLanguage(r)
	opts := calc.DamageOptions(c)
	out := make([]damageOptionView, len(opts))
	for i, o := range opts {
		out[i] = damageOptionView{DamageOption: o, Label: locale.Label(o.Key, tag), Known: locale.Known(o.Key)}
	}
	writeJSON(w, out)
}

func (s *Server) cardFromPath(w http.ResponseWriter, r *http.Request) (models.Card, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return models.Card{}, false
	}
	c, ok := s.cards.ByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "card not found")
		return models.Card{}, false
	}
	return c, true
}

// requestLanguage honours ?lang= first, then Accept-Language.
func requestLanguage(r *http.Request) language.Tag {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return locale.Parse(lang)
	}
	return locale.Match(r.Header.Get("Accept-Language"))
}
