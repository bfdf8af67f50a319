package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VNIndexAgent/internal/alert"
	"VNIndexAgent/internal/app"
	"VNIndexAgent/internal/model"
	"VNIndexAgent/internal/state"
)

type fakeController struct {
	st        state.State
	chatText  string
	research  bool
	refreshed int
	busy      bool
	removed   string
	active    string
}

func (f *fakeController) Snapshot() state.State { return f.st.Clone() }

func (f *fakeController) Chat(_ context.Context, text string, research bool) (model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, app.ErrEmptyText
	}
	f.chatText, f.research = text, research
	return model.NewMessage(model.RoleModel, model.KindChat, "trả lời", nil), nil
}

func (f *fakeController) AnalyzePortfolio(context.Context) (model.Message, error) {
	return model.NewMessage(model.RoleModel, model.KindChat, "phân tích", nil), nil
}

func (f *fakeController) ReviewPortfolio(context.Context) model.Message {
	return model.NewMessage(model.RoleModel, model.KindReview, "review", nil)
}

func (f *fakeController) RefreshPrices(context.Context) app.RefreshResult {
	f.refreshed++
	if f.busy {
		return app.RefreshResult{Skipped: true}
	}
	return app.RefreshResult{Accepted: model.PriceTable{"FPT": 135200}}
}

func (f *fakeController) AddAlert(symbol string, cond model.Condition, threshold float64) (model.Alert, error) {
	if err := alert.Validate(symbol, cond, threshold); err != nil {
		return model.Alert{}, err
	}
	return alert.New(symbol, cond, threshold), nil
}

func (f *fakeController) QuickAlerts(symbol string) ([2]model.Alert, error) {
	p, ok := f.st.Prices.Lookup(symbol)
	if !ok {
		return [2]model.Alert{}, app.ErrUnknownPrice
	}
	return alert.QuickPair(symbol, p), nil
}

func (f *fakeController) RemoveAlert(id string) error {
	if id != "a1" {
		return state.ErrAlertNotFound
	}
	f.removed = id
	return nil
}

func (f *fakeController) SaveRecommendation(id string) (model.SavedRecommendation, error) {
	if id != "m1" {
		return model.SavedRecommendation{}, state.ErrMessageNotFound
	}
	return model.SavedRecommendation{ID: "r1", Symbol: "HPG", Action: model.ActionBuy}, nil
}

func (f *fakeController) SetActiveSymbol(symbol string) error {
	f.active = symbol
	f.st.ActiveSymbol = symbol
	return nil
}

func newTestServer() (*Server, *fakeController) {
	fc := &fakeController{st: state.State{
		Prices:       model.PriceTable{"VN-INDEX": 1258.4, "HPG": 29500},
		Portfolio:    []model.PortfolioItem{{Symbol: "HPG", Shares: 100, AvgPrice: 28000, CurrentPrice: 29500, Sector: "Thép"}},
		ActiveSymbol: "VN-INDEX",
	}}
	return New(Config{Addr: ":0", Log: zerolog.Nop(), App: fc, DevMode: true}), fc
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer()
	w := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestState(t *testing.T) {
	s, _ := newTestServer()
	w := do(t, s, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VN-INDEX", resp["active_symbol"])
	assert.InDelta(t, 1258.4, resp["active_price"], 1e-9)
	assert.Equal(t, []any{}, resp["alerts"])
	assert.NotContains(t, resp, "last_updated")
}

func TestChat(t *testing.T) {
	s, fc := newTestServer()

	w := do(t, s, http.MethodPost, "/api/chat", `{"text":"FPT thế nào?","research":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FPT thế nào?", fc.chatText)
	assert.True(t, fc.research)

	var msg model.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, "trả lời", msg.Text)
}

func TestChat_BadRequests(t *testing.T) {
	s, _ := newTestServer()
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/chat", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/chat", `{"text":" "}`).Code)
}

func TestRefresh(t *testing.T) {
	s, fc := newTestServer()
	w := do(t, s, http.MethodPost, "/api/prices/refresh", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, fc.refreshed)
	assert.JSONEq(t, `{"skipped":false,"accepted":{"FPT":135200},"rejected":0}`, w.Body.String())
}

func TestRefresh_InFlightIsAccepted(t *testing.T) {
	s, fc := newTestServer()
	fc.busy = true
	w := do(t, s, http.MethodPost, "/api/prices/refresh", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"skipped":true,"accepted":null,"rejected":0}`, w.Body.String())
}

func TestPortfolio(t *testing.T) {
	s, _ := newTestServer()
	w := do(t, s, http.MethodGet, "/api/portfolio/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Thép")

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/portfolio/analyze", "").Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/portfolio/review", "").Code)
}

func TestAlerts(t *testing.T) {
	s, fc := newTestServer()

	w := do(t, s, http.MethodPost, "/api/alerts/", `{"symbol":"fpt","condition":"ABOVE","threshold":140000}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var al model.Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &al))
	assert.Equal(t, "FPT", al.Symbol)
	assert.True(t, al.Active)

	w = do(t, s, http.MethodPost, "/api/alerts/", `{"symbol":"FPT","condition":"SIDEWAYS","threshold":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/alerts/quick", `{"symbol":"HPG"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var pair []model.Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	require.Len(t, pair, 2)
	assert.Equal(t, 30975.0, pair[0].Threshold)
	assert.Equal(t, 28025.0, pair[1].Threshold)

	w = do(t, s, http.MethodPost, "/api/alerts/quick", `{"symbol":"XYZ"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/alerts/a1", "").Code)
	assert.Equal(t, "a1", fc.removed)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/api/alerts/zz", "").Code)
}

func TestRecommendations(t *testing.T) {
	s, _ := newTestServer()

	w := do(t, s, http.MethodPost, "/api/recommendations/", `{"message_id":"m1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"action":"BUY"`)

	w = do(t, s, http.MethodPost, "/api/recommendations/", `{"message_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/api/recommendations/", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestActiveSymbol(t *testing.T) {
	s, fc := newTestServer()
	w := do(t, s, http.MethodPut, "/api/active-symbol", `{"symbol":"HPG"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HPG", fc.active)
	assert.JSONEq(t, `{"active_symbol":"HPG"}`, w.Body.String())
}
