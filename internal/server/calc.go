package server

import (
	"encoding/json"
	"net/http"

	"github.com/pefman/cr-calc/internal/calc"
	"github.com/pefman/cr-calc/internal/models"
)

// POST /api/calc
func (s *Server) handleCalc(w http.ResponseWriter, r *http.Request) {
	var req models.CalcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	res, ok := s.resolve(w, req.DefenceID, req.Attacks)
	if !ok {
		return
	}
	s.stats.Record(res)
	writeJSON(w, res)
}

// resolve looks up the defence card and runs the calculation. Unknown attack
// cards are reported in the result; an unknown defence card is a client error.
func (s *Server) resolve(w http.ResponseWriter, defenceID int, attacks []models.AttackSelection) (calc.Result, bool) {
	var def *models.Card
	if defenceID != 0 {
		c, ok := s.cards.ByID(defenceID)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown defence card")
			return calc.Result{}, false
		}
		def = &c
	}
	return calc.Resolve(s.cards, def, attacks), true
}
