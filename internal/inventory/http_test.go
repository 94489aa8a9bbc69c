package inventory_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"BarStock/internal/auth"
	"BarStock/internal/inventory"
)

const testPassword = "letmein"

func newTS(t *testing.T) *httptest.Server {
	t.Helper()

	v, err := auth.NewVerifier(testPassword, "")
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	reg := prometheus.NewRegistry()
	s := &inventory.Server{
		Service: inventory.NewService(inventory.NewMemStore(), zap.NewNop(), inventory.NewMetrics(reg)),
		Log:     zap.NewNop(),
	}
	a := &auth.Server{
		Log:      zap.NewNop(),
		Verifier: v,
		JWT:      auth.NewTokenMaker("test-secret"),
	}

	h := inventory.NewHandler(s, a, inventory.HTTPDeps{
		Log:            zap.NewNop(),
		Service:        "barstock",
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   "scrape",
		CORSOrigin:     "*",
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func pw() map[string]string {
	return map[string]string{auth.PasswordHeader: testPassword}
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	return v
}

type errorBody struct {
	Message string `json:"message"`
}

func findAlcohol(items []inventory.AlcoholItem, name string) (inventory.AlcoholItem, bool) {
	for _, it := range items {
		if strings.EqualFold(it.Name, name) {
			return it, true
		}
	}
	return inventory.AlcoholItem{}, false
}

func TestAPI_RequiresCredential(t *testing.T) {
	ts := newTS(t)
	c := &http.Client{}

	resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/api/state", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no credential: expected 401, got %d body=%s", resp.StatusCode, raw)
	}
	if got := decode[errorBody](t, raw).Message; got != "Unauthorized" {
		t.Fatalf("expected Unauthorized, got %q", got)
	}

	resp, raw = doJSON(t, c, http.MethodGet, ts.URL+"/api/state", nil, map[string]string{auth.PasswordHeader: "nope"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d body=%s", resp.StatusCode, raw)
	}

	resp, raw = doJSON(t, c, http.MethodGet, ts.URL+"/api/state", nil, map[string]string{"Authorization": "Bearer garbage"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d body=%s", resp.StatusCode, raw)
	}
}

func TestAPI_StateSeedsDefaults(t *testing.T) {
	ts := newTS(t)

	resp, raw := doJSON(t, &http.Client{}, http.MethodGet, ts.URL+"/api/state", nil, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state: expected 200, got %d body=%s", resp.StatusCode, raw)
	}

	d := decode[inventory.Document](t, raw)
	if len(d.Alcohols) != 7 {
		t.Fatalf("expected 7 seeded spirits, got %d", len(d.Alcohols))
	}
	if d.Shishas == nil || d.Misc == nil {
		t.Fatalf("expected empty arrays, got %s", raw)
	}
	if !strings.Contains(string(raw), `"misc":[]`) {
		t.Fatalf("misc should serialize as [], got %s", raw)
	}
}

func TestAPI_LoginIssuesUsableToken(t *testing.T) {
	ts := newTS(t)
	c := &http.Client{}

	resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/api/login", map[string]any{"password": "wrong"}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("login wrong: expected 401, got %d body=%s", resp.StatusCode, raw)
	}
	if got := decode[errorBody](t, raw).Message; got != "Invalid password" {
		t.Fatalf("expected Invalid password, got %q", got)
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/api/login", map[string]any{"password": "  " + testPassword + " "}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	login := decode[struct {
		OK          bool   `json:"ok"`
		AccessToken string `json:"access_token"`
	}](t, raw)
	if !login.OK || login.AccessToken == "" {
		t.Fatalf("expected ok with token, got %s", raw)
	}

	resp, raw = doJSON(t, c, http.MethodGet, ts.URL+"/api/state", nil, map[string]string{"Authorization": "Bearer " + login.AccessToken})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state with token: expected 200, got %d body=%s", resp.StatusCode, raw)
	}
}

func TestAPI_AlcoholFlow(t *testing.T) {
	ts := newTS(t)
	c := &http.Client{}

	resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/api/alcohols/consume", map[string]any{"name": "vodka", "amount": 120}, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("consume: expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	items := decode[struct {
		Alcohols []inventory.AlcoholItem `json:"alcohols"`
	}](t, raw).Alcohols
	vodka, ok := findAlcohol(items, "Vodka")
	if !ok || vodka.Quantity != 580 {
		t.Fatalf("expected Vodka at 580, got %+v", items)
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/api/alcohols/consume", map[string]any{"name": "Gin"}, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("default pour: expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	items = decode[struct {
		Alcohols []inventory.AlcoholItem `json:"alcohols"`
	}](t, raw).Alcohols
	if gin, _ := findAlcohol(items, "Gin"); gin.Quantity != 660 {
		t.Fatalf("expected Gin at 660 after a default pour, got %v", gin.Quantity)
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/api/alcohols/refill", map[string]any{"name": "VODKA"}, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refill: expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	items = decode[struct {
		Alcohols []inventory.AlcoholItem `json:"alcohols"`
	}](t, raw).Alcohols
	if vodka, _ := findAlcohol(items, "Vodka"); vodka.Quantity != 700 {
		t.Fatalf("expected Vodka refilled to 700, got %v", vodka.Quantity)
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/api/alcohols/bottle", map[string]any{"name": "Rum", "bottleSize": "1000"}, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bottle: expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	items = decode[struct {
		Alcohols []inventory.AlcoholItem `json:"alcohols"`
	}](t, raw).Alcohols
	if rum, ok := findAlcohol(items, "Rum"); !ok || rum.Quantity != 1000 || rum.OriginalQuantity != 1000 {
		t.Fatalf("expected Rum 1000/1000, got %+v", rum)
	}
}

func TestAPI_ErrorMapping(t *testing.T) {
	ts := newTS(t)
	c := &http.Client{}

	cases := []struct {
		name    string
		method  string
		path    string
		body    any
		status  int
		message string
	}{
		{"unknown alcohol", http.MethodPost, "/api/alcohols/consume", map[string]any{"name": "Absinthe", "amount": 40}, http.StatusNotFound, "alcohol not found"},
		{"unknown shisha", http.MethodPost, "/api/shishas/serve", map[string]any{"name": "Mint"}, http.StatusNotFound, "shisha flavour not found"},
		{"negative misc", http.MethodPost, "/api/misc", map[string]any{"name": "Ice", "quantity": -5}, http.StatusBadRequest, ""},
		{"missing name", http.MethodPost, "/api/alcohols", map[string]any{"quantity": 500}, http.StatusBadRequest, ""},
		{"non-numeric amount", http.MethodPost, "/api/alcohols/consume", map[string]any{"name": "Vodka", "amount": "abc"}, http.StatusBadRequest, ""},
		{"malformed body", http.MethodPost, "/api/alcohols/consume", `{"name": "Vodka",`, http.StatusBadRequest, "invalid request body"},
		{"zero delta", http.MethodPost, "/api/misc/adjust", map[string]any{"name": "Ice", "delta": 0}, http.StatusBadRequest, ""},
	}

	for _, tc := range cases {
		resp, raw := doJSON(t, c, tc.method, ts.URL+tc.path, tc.body, pw())
		if resp.StatusCode != tc.status {
			t.Fatalf("%s: expected %d, got %d body=%s", tc.name, tc.status, resp.StatusCode, raw)
		}
		msg := decode[errorBody](t, raw).Message
		if msg == "" {
			t.Fatalf("%s: expected a message, got %s", tc.name, raw)
		}
		if tc.message != "" && msg != tc.message {
			t.Fatalf("%s: expected message %q, got %q", tc.name, tc.message, msg)
		}
	}
}

func TestAPI_MiscFlow(t *testing.T) {
	ts := newTS(t)
	c := &http.Client{}

	resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/api/misc", map[string]any{"name": "Ice", "quantity": 0}, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add misc zero: expected 200, got %d body=%s", resp.StatusCode, raw)
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/api/misc/adjust", map[string]any{"name": "ice", "delta": 10}, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("adjust up: expected 200, got %d body=%s", resp.StatusCode, raw)
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/api/misc/adjust", map[string]any{"name": "Ice"}, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("adjust default: expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	misc := decode[struct {
		Misc []inventory.MiscItem `json:"misc"`
	}](t, raw).Misc
	if len(misc) != 1 || misc[0].Quantity != 9 {
		t.Fatalf("expected Ice at 9, got %+v", misc)
	}

	resp, raw = doJSON(t, c, http.MethodDelete, ts.URL+"/api/misc/ICE", nil, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove misc: expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	if !strings.Contains(string(raw), `"misc":[]`) {
		t.Fatalf("expected empty misc, got %s", raw)
	}
}

func TestAPI_ShishaFlowAndLowStock(t *testing.T) {
	ts := newTS(t)
	c := &http.Client{}

	resp, raw := doJSON(t, c, http.MethodPost, ts.URL+"/api/shishas", map[string]any{
		"name": "Mint", "packSize": 200, "gramsPerServe": 25, "currentGrams": 100,
	}, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add shisha: expected 200, got %d body=%s", resp.StatusCode, raw)
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/api/shishas/serve", map[string]any{"name": "mint"}, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("serve: expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	shishas := decode[struct {
		Shishas []inventory.ShishaItem `json:"shishas"`
	}](t, raw).Shishas
	if len(shishas) != 1 || shishas[0].GramsRemaining != 75 {
		t.Fatalf("expected 75g left, got %+v", shishas)
	}

	resp, raw = doJSON(t, c, http.MethodGet, ts.URL+"/api/low-stock", nil, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("low-stock: expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	low := decode[inventory.LowStock](t, raw)
	if len(low.Shishas) != 0 || len(low.Alcohols) != 0 {
		t.Fatalf("75g of 25g serves is above the threshold, got %+v", low)
	}

	doJSON(t, c, http.MethodPost, ts.URL+"/api/shishas/serve", map[string]any{"name": "Mint"}, pw())
	_, raw = doJSON(t, c, http.MethodGet, ts.URL+"/api/low-stock", nil, pw())
	low = decode[inventory.LowStock](t, raw)
	if len(low.Shishas) != 1 || low.Shishas[0].Name != "Mint" {
		t.Fatalf("expected Mint flagged at 50g, got %+v", low)
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/api/shishas/adjust", map[string]any{"name": "Mint", "delta": "-10"}, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("adjust: expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	shishas = decode[struct {
		Shishas []inventory.ShishaItem `json:"shishas"`
	}](t, raw).Shishas
	if shishas[0].GramsRemaining != 40 {
		t.Fatalf("expected 40g after adjust, got %v", shishas[0].GramsRemaining)
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/api/shishas/restock", map[string]any{"name": "Mint"}, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("restock: expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	shishas = decode[struct {
		Shishas []inventory.ShishaItem `json:"shishas"`
	}](t, raw).Shishas
	if shishas[0].GramsRemaining != 240 {
		t.Fatalf("expected 240g after restock, got %v", shishas[0].GramsRemaining)
	}
}

func TestAPI_DeleteEscapedName(t *testing.T) {
	ts := newTS(t)
	c := &http.Client{}

	resp, raw := doJSON(t, c, http.MethodDelete, ts.URL+"/api/alcohols/"+url.PathEscape("blue curacao"), nil, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	items := decode[struct {
		Alcohols []inventory.AlcoholItem `json:"alcohols"`
	}](t, raw).Alcohols
	if _, ok := findAlcohol(items, "Blue Curacao"); ok || len(items) != 6 {
		t.Fatalf("expected Blue Curacao removed, got %+v", items)
	}

	resp, raw = doJSON(t, c, http.MethodPost, ts.URL+"/api/alcohols", map[string]any{"name": "Rum/Cola", "quantity": 300}, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add: expected 200, got %d body=%s", resp.StatusCode, raw)
	}
	resp, raw = doJSON(t, c, http.MethodDelete, ts.URL+"/api/alcohols/"+url.PathEscape("Rum/Cola"), nil, pw())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete slash name: expected 200, got %d body=%s", resp.StatusCode, raw)
	}

	resp, raw = doJSON(t, c, http.MethodDelete, ts.URL+"/api/alcohols/Absinthe", nil, pw())
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("delete unknown: expected 404, got %d body=%s", resp.StatusCode, raw)
	}
}

func TestAPI_PreflightAndProbes(t *testing.T) {
	ts := newTS(t)
	c := &http.Client{}

	resp, _ := doJSON(t, c, http.MethodOptions, ts.URL+"/api/alcohols/consume", nil, map[string]string{
		"Origin":                        "http://bar.local",
		"Access-Control-Request-Method": "POST",
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight: expected 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Headers"); !strings.Contains(got, auth.PasswordHeader) {
		t.Fatalf("expected %s in allowed headers, got %q", auth.PasswordHeader, got)
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, raw := doJSON(t, c, http.MethodGet, ts.URL+path, nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d body=%s", path, resp.StatusCode, raw)
		}
	}

	resp, _ = doJSON(t, c, http.MethodGet, ts.URL+"/metrics", nil, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("metrics without token: expected 403, got %d", resp.StatusCode)
	}

	doJSON(t, c, http.MethodPost, ts.URL+"/api/alcohols/refill", map[string]any{"name": "Gin"}, pw())
	resp, raw := doJSON(t, c, http.MethodGet, ts.URL+"/metrics", nil, map[string]string{"Authorization": "Bearer scrape"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(raw), `inventory_operations_total{op="refill",result="ok"} 1`) {
		t.Fatalf("expected refill counter in metrics output")
	}
}
