package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"famfin/internal/core"
	"famfin/internal/data"
	"famfin/internal/localstore"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := localstore.Open(filepath.Join(t.TempDir(), "famfin.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := data.New(data.Config{Local: store})
	s := NewServer("127.0.0.1:0", svc)
	ts := httptest.NewServer(s.Server.Handler)
	t.Cleanup(func() {
		ts.Close()
		s.rateLimiter.stop()
	})
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(blob)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestMemberLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/members", map[string]string{"name": "Ana", "role": "Mãe"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decode[core.Member](t, resp)
	if created.ID == "" || created.Name != "Ana" {
		t.Fatalf("unexpected member: %+v", created)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/members/"+created.ID, map[string]string{"role": "Avó"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/members", nil)
	members := decode[[]core.Member](t, resp)
	if len(members) != 1 || members[0].Role != "Avó" || members[0].Name != "Ana" {
		t.Fatalf("unexpected members: %+v", members)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/members/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/members", nil)
	if left := decode[[]core.Member](t, resp); len(left) != 0 {
		t.Fatalf("expected empty list, got %+v", left)
	}
}

func TestCreateMemberValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/members", map[string]string{"name": "   "})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("blank name status = %d, want 422", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/members", bytes.NewReader([]byte("{not json")))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTransactionEndpoints(t *testing.T) {
	ts := newTestServer(t)

	member := decode[core.Member](t, doJSON(t, http.MethodPost, ts.URL+"/members", map[string]string{"name": "Ana"}))

	resp := doJSON(t, http.MethodPost, ts.URL+"/transactions", map[string]any{
		"type": "expense", "amount": 120.5, "category": "Alimentação",
		"description": "Feira", "date": "2024-03-02", "memberId": member.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	first := decode[core.Transaction](t, resp)

	doJSON(t, http.MethodPost, ts.URL+"/transactions", map[string]any{
		"type": "income", "amount": 3000.0, "category": "Salário",
		"date": "2024-03-05", "memberId": member.ID,
	}).Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/transactions", nil)
	txs := decode[[]core.Transaction](t, resp)
	if len(txs) != 2 || txs[0].Date != "2024-03-05" {
		t.Fatalf("expected newest first, got %+v", txs)
	}

	amount := map[string]any{"amount": 99.9}
	resp = doJSON(t, http.MethodPut, ts.URL+"/transactions/"+first.ID, amount)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/transactions", nil)
	txs = decode[[]core.Transaction](t, resp)
	for _, tx := range txs {
		if tx.ID == first.ID && tx.Amount != 99.9 {
			t.Errorf("amount not updated: %+v", tx)
		}
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/transactions", map[string]any{
		"type": "expense", "amount": -1.0, "category": "Lazer", "date": "2024-03-02", "memberId": member.ID,
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("negative amount status = %d, want 422", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestFuelEntryEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/transactions/fuel", map[string]any{
		"liters": 40.0, "kilometers": 520.0, "amount": 250.0, "date": "2024-03-01", "memberId": "1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("fuel status = %d", resp.StatusCode)
	}
	tx := decode[core.Transaction](t, resp)
	if tx.Description != "Abastecimento - 40.00L" {
		t.Errorf("description = %q", tx.Description)
	}
	if tx.FuelData == nil || tx.FuelData.Consumption != 13 {
		t.Errorf("fuel data = %+v", tx.FuelData)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/transactions/fuel", map[string]any{
		"liters": 0.0, "kilometers": 100.0, "amount": 50.0, "date": "2024-03-01", "memberId": "1",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("zero liters status = %d, want 422", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSummaryEndpoint(t *testing.T) {
	ts := newTestServer(t)

	for _, tx := range []map[string]any{
		{"type": "income", "amount": 3000.0, "category": "Salário", "date": "2024-03-05", "memberId": "1"},
		{"type": "expense", "amount": 120.0, "category": "Alimentação", "date": "2024-03-10", "memberId": "1"},
		{"type": "expense", "amount": 999.0, "category": "Lazer", "date": "2024-04-01", "memberId": "1"},
	} {
		doJSON(t, http.MethodPost, ts.URL+"/transactions", tx).Body.Close()
	}

	resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/summary?year=%d&month=%d", ts.URL, 2024, 3), nil)
	sum := decode[core.Summary](t, resp)
	if sum.Income != 3000 || sum.Expenses != 120 || sum.Balance != 2880 {
		t.Errorf("march summary: %+v", sum)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/summary", nil)
	sum = decode[core.Summary](t, resp)
	if sum.Expenses != 1119 {
		t.Errorf("total summary: %+v", sum)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/summary?year=2024&month=13", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad month status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCategoriesEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/categories", nil)
	cats := decode[[]core.Category](t, resp)
	found := false
	for _, c := range cats {
		if c.Name == "Outros" {
			found = true
		}
	}
	if !found {
		t.Errorf("default categories missing Outros: %+v", cats)
	}

	// Category administration needs the remote API; local mode refuses.
	resp = doJSON(t, http.MethodPut, ts.URL+"/categories/3", map[string]string{"name": "Mercado"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("rename in local mode status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPut, ts.URL+"/categories/abc", map[string]string{"name": "X"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/readyz", nil)
	ready := decode[map[string]string](t, resp)
	if ready["mode"] != "local" {
		t.Errorf("readyz mode = %q, want local", ready["mode"])
	}
}
