package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pefman/cr-calc/internal/calc"
	"github.com/pefman/cr-calc/internal/models"
	"github.com/pefman/cr-calc/internal/storage"
)

// GET /api/scenarios
func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	list, err := s.scenarios.List(r.Context())
	if err != nil {
		log.Printf("api: list scenarios: %v", err)
		writeError(w, http.StatusInternalServerError, "could not list scenarios")
		return
	}
	writeJSON(w, list)
}

// POST /api/scenarios
func (s *Server) handleSaveScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string                   `json:"name"`
		DefenceID int                      `json:"defence_id,omitempty"`
		Attacks   []models.AttackSelection `json:"attacks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.DefenceID != 0 {
		if _, ok := s.cards.ByID(req.DefenceID); !ok {
			writeError(w, http.StatusBadRequest, "unknown defence card")
			return
		}
	}
	sc := storage.Scenario{Name: req.Name, DefenceID: req.DefenceID}
	for _, a := range req.Attacks {
		if _, ok := s.cards.ByID(a.CardID); !ok {
			writeError(w, http.StatusBadRequest, "unknown attack card "+strconv.Itoa(a.CardID))
			return
		}
		sc.Attacks = append(sc.Attacks, calc.Normalize(a))
	}
	saved, err := s.scenarios.Save(r.Context(), sc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Printf("api: scenario saved id=%d name=%q attacks=%d", saved.ID, saved.Name, len(saved.Attacks))
	writeJSONStatus(w, http.StatusCreated, saved)
}

// GET /api/scenarios/{id}
func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.scenarioFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, sc)
}

// DELETE /api/scenarios/{id}
func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid scenario id")
		return
	}
	if err := s.scenarios.Delete(r.Context(), id); err != nil {
		s.scenarioError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/scenarios/{id}/result
func (s *Server) handleScenarioResult(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.scenarioFromPath(w, r)
	if !ok {
		return
	}
	res, ok := s.resolve(w, sc.DefenceID, sc.Attacks)
	if !ok {
		return
	}
	writeJSON(w, res)
}

func (s *Server) scenarioFromPath(w http.ResponseWriter, r *http.Request) (storage.Scenario, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid scenario id")
		return storage.Scenario{}, false
	}
	sc, err := s.scenarios.Get(r.Context(), id)
	if err != nil {
		s.scenarioError(w, err)
		return storage.Scenario{}, false
	}
	return sc, true
}

func (s *Server) scenarioError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "scenario not found")
		return
	}
	log.Printf("api: scenario: %v", err)
	writeError(w, http.StatusInternalServerError, "scenario storage failed")
}
