package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"campaign-grants/internal/notify"
	"campaign-grants/internal/router"
)

type capture struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *capture) Notify(ctx context.Context, e notify.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *capture) kinds() []notify.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]notify.Kind, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Kind)
	}
	return out
}

func TestHTTP_EndToEnd_GrantLifecycle(t *testing.T) {
	events := &capture{}
	app := router.New(router.Options{AuthVerifier: nil, Notifier: events})
	if _, err := app.Members.EnsureAuthority(context.Background(), "gm-1", "Narrator"); err != nil {
		t.Fatalf("EnsureAuthority: %v", err)
	}

	ts := httptest.NewServer(app.Handler)
	defer ts.Close()

	gm := "gm-1"

	// 1) GM da de alta dos jugadores
	for _, id := range []string{"ayla", "bren"} {
		st, body := doReq(t, ts.URL, "POST", "/members", gm, map[string]any{
			"id":           id,
			"display_name": id,
			"role":         "player",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 creating member %s, got %d body=%s", id, st, string(body))
		}
	}

	// 2) Un jugador no puede crear miembros
	{
		st, _ := doReq(t, ts.URL, "POST", "/members", "ayla", map[string]any{"display_name": "x", "role": "player"})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 creating member as player, got %d", st)
		}
	}

	// 3) Catálogo y ledger
	abilityID := createAbility(t, ts.URL, gm, "Veil Step", 3)
	for _, id := range []string{"ayla", "bren"} {
		st, body := doReq(t, ts.URL, "PUT", "/holders/"+id+"/resources", gm, map[string]any{
			"health":      10,
			"reserve":     10,
			"max_reserve": 20,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 init resources, got %d body=%s", st, string(body))
		}
	}

	// 4) GM emite un grant transferible con cooldown
	var grant struct {
		ID     string `json:"id"`
		Active bool   `json:"active"`
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/grants", gm, map[string]any{
			"holder_id":        "ayla",
			"ability_id":       abilityID,
			"title":            "Veil of the Ninth Bell",
			"transferable":     true,
			"reuse_policy":     "cooldown",
			"cooldown_minutes": 60,
			"effect":           map[string]int{"reserve": 5},
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 issuing grant, got %d body=%s", st, string(body))
		}
		mustDecode(t, body, &grant)
		if grant.ID == "" || !grant.Active {
			t.Fatalf("unexpected grant: %s", string(body))
		}
	}

	// 5) Otro jugador no puede consumirlo
	{
		st, _ := doReq(t, ts.URL, "POST", "/grants/"+grant.ID+"/consume", "bren", map[string]any{})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 consume by non-holder, got %d", st)
		}
	}

	// 6) El holder lo consume: 10 - 3 + 5 = 12
	{
		st, body := doReq(t, ts.URL, "POST", "/grants/"+grant.ID+"/consume", "ayla", map[string]any{"threshold": 8, "roll": 11})
		if st != http.StatusOK {
			t.Fatalf("expected 200 consume, got %d body=%s", st, string(body))
		}
		var out struct {
			ReferenceCode string `json:"reference_code"`
			Resources     struct {
				Reserve int `json:"reserve"`
			} `json:"resources"`
		}
		mustDecode(t, body, &out)
		if out.Resources.Reserve != 12 || out.ReferenceCode == "" {
			t.Fatalf("unexpected consume body: %s", string(body))
		}
	}

	// 7) Segundo consumo inmediato: cooldown
	{
		st, body := doReq(t, ts.URL, "POST", "/grants/"+grant.ID+"/consume", "ayla", map[string]any{})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 on cooldown, got %d body=%s", st, string(body))
		}
		var eb struct {
			Error string `json:"error"`
		}
		mustDecode(t, body, &eb)
		if eb.Error != "cooldown_active" {
			t.Fatalf("expected cooldown_active, got %s", string(body))
		}
	}

	// 8) Transferencia reinicia el cooldown para el nuevo holder
	{
		st, body := doReq(t, ts.URL, "POST", "/grants/"+grant.ID+"/transfer", "ayla", map[string]any{"to_holder_id": "bren"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 transfer, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "POST", "/grants/"+grant.ID+"/consume", "bren", map[string]any{})
		if st != http.StatusOK {
			t.Fatalf("expected 200 consume after transfer, got %d body=%s", st, string(body))
		}
	}

	// 9) Ayla ya no lo ve en su lista; Bren sí
	{
		var list []json.RawMessage
		st, body := doReq(t, ts.URL, "GET", "/me/grants", "ayla", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing, got %d", st)
		}
		mustDecode(t, body, &list)
		if len(list) != 0 {
			t.Fatalf("expected empty list for previous holder, got %s", string(body))
		}
		st, body = doReq(t, ts.URL, "GET", "/holders/bren/grants", gm, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing as gm, got %d", st)
		}
		mustDecode(t, body, &list)
		if len(list) != 1 {
			t.Fatalf("expected one grant for bren, got %s", string(body))
		}
	}

	// 10) Revoke idempotente
	for i := 0; i < 2; i++ {
		st, body := doReq(t, ts.URL, "POST", "/grants/"+grant.ID+"/revoke", gm, map[string]any{"note": "session over"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 revoke #%d, got %d body=%s", i+1, st, string(body))
		}
	}

	// 11) Historial: grant, use, transfer, use, revoke
	{
		st, body := doReq(t, ts.URL, "GET", "/grants/"+grant.ID+"/usage", gm, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 usage, got %d", st)
		}
		var hist []struct {
			Action string `json:"action"`
		}
		mustDecode(t, body, &hist)
		want := []string{"grant", "use", "transfer", "use", "revoke"}
		if len(hist) != len(want) {
			t.Fatalf("expected %d usage entries, got %s", len(want), string(body))
		}
		for i, a := range want {
			if hist[i].Action != a {
				t.Fatalf("usage[%d] = %s, want %s", i, hist[i].Action, a)
			}
		}
	}

	want := []notify.Kind{
		notify.KindGrantIssued,
		notify.KindGrantUsed,
		notify.KindGrantTransferred,
		notify.KindGrantUsed,
		notify.KindGrantRevoked,
	}
	got := events.kinds()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestHTTP_Health(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("health = %d %q", st, string(body))
	}
}

func createAbility(t *testing.T, baseURL, gm, name string, cost int) string {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/abilities", gm, map[string]any{
		"name":      name,
		"base_cost": cost,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 creating ability, got %d body=%s", st, string(body))
	}
	var out struct {
		ID string `json:"id"`
	}
	mustDecode(t, body, &out)
	return out.ID
}

func mustDecode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json unmarshal: %v body=%s", err, string(body))
	}
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
