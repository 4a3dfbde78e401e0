package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/npc-engine/internal/admin"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *apiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &apiClient{
		http:    &http.Client{Timeout: 5 * time.Second},
		baseURL: srv.URL,
		tier:    "Supervisor",
	}
}

func TestAPIClient_ListNPCsFollowsPages(t *testing.T) {
	var tiers []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		tiers = append(tiers, r.Header.Get("X-Access-Tier"))
		list := admin.NPCList{Page: 1, Pages: 2, NPCs: []admin.NPCSummary{{ID: 1, Name: "Merchant"}}}
		if r.URL.Query().Get("page") == "2" {
			list = admin.NPCList{Page: 2, Pages: 2, NPCs: []admin.NPCSummary{{ID: 2, Name: "Miner"}}}
		}
		_ = json.NewEncoder(w).Encode(admin.Result{Success: true, Data: list})
	})

	npcs, err := client.listNPCs()
	require.NoError(t, err)
	require.Len(t, npcs, 2)
	assert.Equal(t, "Miner", npcs[1].Name)
	assert.Equal(t, []string{"Supervisor", "Supervisor"}, tiers)
}

func TestAPIClient_FailedResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(admin.Result{Message: "page 9 not found", Category: admin.CategoryNotFound})
	})

	_, err := client.getPage(9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 9 not found")
}

func TestAPIClient_NonJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := client.getNPC(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestAPIClient_TestConnection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	assert.True(t, client.testConnection())

	client.baseURL = "http://127.0.0.1:1"
	assert.False(t, client.testConnection())
}

func TestFilterNPCs(t *testing.T) {
	npcs := []admin.NPCSummary{{ID: 1, Name: "Merchant"}, {ID: 2, Name: "Miner"}, {ID: 3, Name: "Ghost"}}

	assert.Len(t, filterNPCs(npcs, ""), 3)
	assert.Len(t, filterNPCs(npcs, " mi "), 1)
	assert.Len(t, filterNPCs(npcs, "M"), 2)
	assert.Empty(t, filterNPCs(npcs, "dragon"))
}

func TestNavigationTargets(t *testing.T) {
	page := &admin.PageDetail{
		ID: 1,
		Buttons: []admin.ButtonDetail{
			{ID: 1, ButtonID: 1, DestinationPageID: 4},
			{ID: 2, ButtonID: 2},
		},
		Checks: []admin.CheckDetail{
			{ID: 1},
			{ID: 2, FailPageID: 7},
		},
	}

	dest, ok := buttonTarget(page, 1)
	assert.True(t, ok)
	assert.Equal(t, 4, dest)

	_, ok = buttonTarget(page, 2)
	assert.False(t, ok, "button without destination")
	_, ok = buttonTarget(page, 3)
	assert.False(t, ok)
	_, ok = buttonTarget(nil, 1)
	assert.False(t, ok)

	dest, ok = failTarget(page)
	assert.True(t, ok)
	assert.Equal(t, 7, dest)
	_, ok = failTarget(&admin.PageDetail{})
	assert.False(t, ok)
}

func TestRenderPage(t *testing.T) {
	npc := &admin.NPCDetail{NPCSummary: admin.NPCSummary{ID: 1, Name: "Merchant"}}
	page := &admin.PageDetail{
		ID:            3,
		Description:   "greeting",
		DialogLabel:   "Normal",
		Say:           "Welcome",
		SuccessPageID: 5,
		SuccessPage:   "farewell",
		Buttons:       []admin.ButtonDetail{{ID: 1, ButtonID: 1, DestinationPageID: 4, DestinationPage: "shop"}},
		Goods:         []admin.GoodDetail{{ID: 1, ItemID: 1, Item: "Potion", Rate: 1.5, Cost: 15}},
	}

	out := renderPage(npc, page, 80)
	assert.Contains(t, out, "#3 greeting")
	assert.Contains(t, out, "Welcome")
	assert.Contains(t, out, "[1] button 1 -> #4 shop")
	assert.Contains(t, out, "Potion x1.50 (15)")
	assert.Contains(t, out, "success -> #5 farewell")

	assert.Contains(t, renderPage(npc, nil, 80), "no entry page")
}
