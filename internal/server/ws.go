package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/pefman/cr-calc/internal/models"
	"github.com/pefman/cr-calc/internal/session"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// wsMsg is the envelope for both directions.
type wsMsg struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type clientIn struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client payloads
type (
	defenceIn struct {
		ID int `json:"id"`
	}
	indexIn struct {
		Index int `json:"index"`
	}
	updateIn struct {
		Index int `json:"index"`
		models.AttackSelection
	}
	countIn struct {
		Index int    `json:"index"`
		Key   string `json:"key"`
		Count int    `json:"count"`
	}
)

var errBadPayload = errors.New("invalid payload")

// GET /ws: one calculator session per connection. Every accepted message is
// answered with the full recomputed state.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed from=%s: %v", r.RemoteAddr, err)
		return
	}
	id, sess := s.sessions.Create()
	log.Printf("ws: connect id=%s from=%s", id, r.RemoteAddr)
	defer func() {
		_ = conn.Close()
		// a session that built something counts as one calculation
		if st := sess.Snapshot(); len(st.Attacks) > 0 {
			s.stats.Finish(st.Result)
		}
		s.sessions.Delete(id)
		log.Printf("ws: closed id=%s", id)
	}()

	// Tell the client its session id, then the initial state
	_ = conn.WriteJSON(wsMsg{Type: "you", Data: map[string]string{"id": id}})
	if err := conn.WriteJSON(wsMsg{Type: "state", Data: sess.Snapshot()}); err != nil {
		return
	}

	for {
		var in clientIn
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws: read error id=%s: %v", id, err)
			}
			return
		}
		s.sessions.Touch(id)
		log.Printf("ws: recv id=%s type=%s", id, in.Type)

		out := wsMsg{Type: "state"}
		if added, err := s.applyWS(sess, in); err != nil {
			out = wsMsg{Type: "error", Data: map[string]string{"message": err.Error(), "request": in.Type}}
		} else {
			if added != 0 {
				s.stats.AddUse(added)
			}
			st := sess.Snapshot()
			s.stats.Observe(st.Result)
			out.Data = st
		}
		if err := conn.WriteJSON(out); err != nil {
			log.Printf("ws: write error id=%s: %v", id, err)
			return
		}
	}
}

// applyWS runs one client message against sess. It returns the id of a card
// that entered the attack list, or 0.
func (s *Server) applyWS(sess *session.Session, in clientIn) (int, error) {
	switch in.Type {
	case "state":
		return 0, nil
	case "reset":
		sess.Reset()
		return 0, nil
	case "defence":
		var d defenceIn
		if err := decodeData(in.Data, &d); err != nil {
			return 0, err
		}
		return 0, sess.SetDefence(d.ID)
	case "add":
		var a models.AttackSelection
		if err := decodeData(in.Data, &a); err != nil {
			return 0, err
		}
		if _, err := sess.AddAttack(a); err != nil {
			return 0, err
		}
		return a.CardID, nil
	case "remove":
		var d indexIn
		if err := decodeData(in.Data, &d); err != nil {
			return 0, err
		}
		return 0, sess.RemoveAttack(d.Index)
	case "update":
		var d updateIn
		if err := decodeData(in.Data, &d); err != nil {
			return 0, err
		}
		prev := 0
		if st := sess.Snapshot(); d.Index >= 0 && d.Index < len(st.Attacks) {
			prev = st.Attacks[d.Index].CardID
		}
		if err := sess.UpdateAttack(d.Index, d.AttackSelection); err != nil {
			return 0, err
		}
		if d.CardID == prev {
			return 0, nil
		}
		return d.CardID, nil
	case "count":
		var d countIn
		if err := decodeData(in.Data, &d); err != nil {
			return 0, err
		}
		if d.Key == "" {
			return 0, errors.New("count needs a damage key")
		}
		_, err := sess.SetCount(d.Index, d.Key, d.Count)
		return 0, err
	}
	return 0, errors.New("unknown message type " + in.Type)
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errBadPayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errBadPayload
	}
	return nil
}
