package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pefman/cr-calc/internal/calc"
	"github.com/pefman/cr-calc/internal/cards"
	"github.com/pefman/cr-calc/internal/session"
	"github.com/pefman/cr-calc/internal/stats"
	"github.com/pefman/cr-calc/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	store, err := cards.LoadEmbedded()
	require.NoError(t, err)
	s := New(store, storage.NewMemoryRepo(), stats.NewTracker())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func postJSON(t *testing.T, url string, body any, out any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)
	var body map[string]string
	resp := getJSON(t, ts.URL+"/api/healthz", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCardsEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	var list []cardView
	resp := getJSON(t, ts.URL+"/api/cards?type=spell&sort=elixir", &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, list)
	for i, c := range list {
		assert.Equal(t, "Spell", string(c.CardType))
		if i > 0 {
			assert.LessOrEqual(t, list[i-1].ElixirCost, c.ElixirCost)
		}
	}

	var card cardView
	resp = getJSON(t, ts.URL+"/api/cards/42", &card)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Mini P.E.K.K.A", card.EnName)
	assert.Equal(t, "card_042_Mini_P_E_K_K_A.png", card.Image)
	assert.Equal(t, 1361, card.HP)

	resp = getJSON(t, ts.URL+"/api/cards/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = getJSON(t, ts.URL+"/api/cards?type=hero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDamageOptionsLabels(t *testing.T) {
	_, ts := newTestServer(t)

	var opts []damageOptionView
	resp := getJSON(t, ts.URL+"/api/cards/61/damage-options", &opts)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, opts, 1)
	assert.Equal(t, "area_damage", opts[0].Key)
	assert.Equal(t, 320, opts[0].PerHit)
	assert.Equal(t, "範囲ダメージ", opts[0].Label)
	assert.True(t, opts[0].Known)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/cards/61/damage-options", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Language", "en-US")
	r2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer r2.Body.Close()
	require.NoError(t, json.NewDecoder(r2.Body).Decode(&opts))
	assert.Equal(t, "Area Damage", opts[0].Label)
}

func TestCalc(t *testing.T) {
	s, ts := newTestServer(t)

	body := map[string]any{
		"defence_id": 1,
		"attacks": []map[string]any{
			{"card_id": 201, "counts": map[string]int{"area_damage": 1}},
			{"card_id": 61, "counts": map[string]int{"area_damage": 2}},
			{"card_id": 5555, "counts": map[string]int{"damage": 1}},
		},
	}
	var res calc.Result
	resp := postJSON(t, ts.URL+"/api/calc", body, &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 688+640, res.TotalDamage)
	assert.Equal(t, 1766-1328, res.RemainingHP)
	assert.Equal(t, calc.HealthMedium, res.HPState)
	require.Len(t, res.Attacks, 3)
	assert.True(t, res.Attacks[2].Missing)

	assert.Equal(t, 1, s.stats.Today().Calculations)

	resp = postJSON(t, ts.URL+"/api/calc", map[string]any{"defence_id": 777}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	r2, err := http.Post(ts.URL+"/api/calc", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	r2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, r2.StatusCode)
}

func TestCalcClampsCounts(t *testing.T) {
	_, ts := newTestServer(t)
	var res calc.Result
	postJSON(t, ts.URL+"/api/calc", map[string]any{
		"attacks": []map[string]any{{"card_id": 1, "counts": map[string]int{"damage": 1000}}},
	}, &res)
	assert.Equal(t, 202*100, res.TotalDamage)
	assert.Equal(t, 0, res.RemainingHP, "no defence card")
}

func TestScenarios(t *testing.T) {
	_, ts := newTestServer(t)

	var saved storage.Scenario
	resp := postJSON(t, ts.URL+"/api/scenarios", map[string]any{
		"name":       "fireball on knight",
		"defence_id": 1,
		"attacks":    []map[string]any{{"card_id": 201, "counts": map[string]int{"area_damage": 150}}},
	}, &saved)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 100, saved.Attacks[0].Counts["area_damage"])

	var list []storage.Scenario
	getJSON(t, ts.URL+"/api/scenarios", &list)
	assert.Len(t, list, 1)

	var res calc.Result
	resp = getJSON(t, ts.URL+"/api/scenarios/1/result", &res)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 68800, res.TotalDamage)
	assert.Equal(t, 0, res.RemainingHP)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/scenarios/1", nil)
	require.NoError(t, err)
	dr, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	dr.Body.Close()
	assert.Equal(t, http.StatusNoContent, dr.StatusCode)

	resp = getJSON(t, ts.URL+"/api/scenarios/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/scenarios", map[string]any{"name": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/scenarios", map[string]any{
		"name": "bad", "attacks": []map[string]any{{"card_id": 9999}},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t)
	resp := getJSON(t, ts.URL+"/api/calc", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func readState(t *testing.T, conn *websocket.Conn) (string, session.State) {
	t.Helper()
	var msg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	var st session.State
	if msg.Type == "state" {
		require.NoError(t, json.Unmarshal(msg.Data, &st))
	}
	return msg.Type, st
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestWebsocketSession(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dialWS(t, ts)
	defer conn.Close()

	typ, _ := readState(t, conn)
	assert.Equal(t, "you", typ)
	typ, st := readState(t, conn)
	require.Equal(t, "state", typ)
	assert.Equal(t, 1, st.DefenceID, "starts on the default defence card")
	assert.Equal(t, 1766, st.Result.RemainingHP)
	assert.Equal(t, 1, s.sessions.Len())

	send := func(typ string, data any) {
		require.NoError(t, conn.WriteJSON(map[string]any{"type": typ, "data": data}))
	}

	send("add", map[string]any{"card_id": 201, "counts": map[string]int{"area_damage": 1}})
	typ, st = readState(t, conn)
	require.Equal(t, "state", typ)
	assert.Equal(t, 688, st.Result.TotalDamage)

	send("count", map[string]any{"index": 0, "key": "area_damage", "count": 2})
	_, st = readState(t, conn)
	assert.Equal(t, 0, st.Result.RemainingHP)

	send("defence", map[string]any{"id": 75})
	_, st = readState(t, conn)
	assert.Equal(t, 3993-1376, st.Result.RemainingHP)

	send("remove", map[string]any{"index": 3})
	typ, _ = readState(t, conn)
	assert.Equal(t, "error", typ)

	send("bogus", nil)
	typ, _ = readState(t, conn)
	assert.Equal(t, "error", typ)

	send("reset", nil)
	_, st = readState(t, conn)
	assert.Equal(t, 1, st.DefenceID)
	assert.Empty(t, st.Attacks)
}

func TestWebsocketStatsCountCardsNotEdits(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dialWS(t, ts)
	readState(t, conn) // you
	readState(t, conn) // state

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "add",
		"data": map[string]any{"card_id": 1, "counts": map[string]int{"damage": 1}}}))
	readState(t, conn)
	for n := 2; n <= 10; n++ {
		require.NoError(t, conn.WriteJSON(map[string]any{"type": "count",
			"data": map[string]any{"index": 0, "key": "damage", "count": n}}))
		readState(t, conn)
	}

	today := s.stats.Today()
	assert.Equal(t, 0, today.Calculations)
	assert.Equal(t, []stats.CardUse{{CardID: 1, Uses: 1}}, today.Cards)
	require.NotNil(t, today.Top)
	assert.Equal(t, 2020, today.Top.TotalDamage)

	// re-selecting the same card is an edit, a new card is a use
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "update",
		"data": map[string]any{"index": 0, "card_id": 1, "counts": map[string]int{"damage": 1}}}))
	readState(t, conn)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "update",
		"data": map[string]any{"index": 0, "card_id": 201, "counts": map[string]int{"area_damage": 1}}}))
	readState(t, conn)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "reset"}))
	readState(t, conn)
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "add",
		"data": map[string]any{"card_id": 201, "counts": map[string]int{"area_damage": 1}}}))
	readState(t, conn)
	assert.Equal(t, []stats.CardUse{{CardID: 201, Uses: 2}, {CardID: 1, Uses: 1}}, s.stats.Today().Cards)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return s.stats.Today().Calculations == 1 },
		2*time.Second, 10*time.Millisecond, "closing the session counts one calculation")
	assert.Len(t, s.stats.Today().Cards, 2)
}

func TestWebsocketActivityKeepsSession(t *testing.T) {
	s, ts := newTestServer(t)
	conn := dialWS(t, ts)
	defer conn.Close()
	readState(t, conn)
	readState(t, conn)

	deadline := time.Now().Add(2200 * time.Millisecond)
	for time.Now().Before(deadline) {
		require.NoError(t, conn.WriteJSON(map[string]any{"type": "state"}))
		readState(t, conn)
		time.Sleep(100 * time.Millisecond)
	}
	assert.Equal(t, 0, s.Sessions().Prune(time.Second))
	assert.Equal(t, 1, s.Sessions().Len())
}
