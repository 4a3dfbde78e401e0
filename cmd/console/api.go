package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jwebster45206/npc-engine/internal/admin"
)

// apiClient reads NPCs and pages from the admin API
type apiClient struct {
	http    *http.Client
	baseURL string
	tier    string
}

// envelope mirrors admin.Result with a typed payload
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func (c *apiClient) testConnection() bool {
	resp, err := c.http.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (c *apiClient) listNPCs() ([]admin.NPCSummary, error) {
	q := url.Values{}
	var out []admin.NPCSummary
	for page := 1; ; page++ {
		q.Set("page", fmt.Sprint(page))
		list, err := get[admin.NPCList](c, "/v1/admin/npcs?"+q.Encode())
		if err != nil {
			return nil, err
		}
		out = append(out, list.NPCs...)
		if page >= list.Pages {
			return out, nil
		}
	}
}

func (c *apiClient) getNPC(id int) (admin.NPCDetail, error) {
	return get[admin.NPCDetail](c, fmt.Sprintf("/v1/admin/npcs/%d", id))
}

func (c *apiClient) getPage(id int) (admin.PageDetail, error) {
	return get[admin.PageDetail](c, fmt.Sprintf("/v1/admin/pages/%d", id))
}

func get[T any](c *apiClient, path string) (T, error) {
	var zero T

	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return zero, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Access-Tier", c.tier)

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}
	if !env.Success {
		return zero, fmt.Errorf("%s", env.Message)
	}
	return env.Data, nil
}
