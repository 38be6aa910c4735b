package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pefman/cr-calc/internal/calc"
	"github.com/pefman/cr-calc/internal/models"
)

var httpClient = &http.Client{Timeout: 8 * time.Second}

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("not found")

// Config holds API configuration
type Config struct {
	BaseURL  string
	CacheTTL time.Duration
}

// Client talks to the calculator API. The card list is cached for CacheTTL
// since the dataset does not change while a server runs.
type Client struct {
	config Config

	cacheMu   sync.RWMutex
	cache     []models.Card
	cacheTime time.Time
}

func NewClient(baseURL string) *Client {
	return &Client{
		config: Config{BaseURL: baseURL, CacheTTL: 5 * time.Minute},
	}
}

// apiError mirrors the server's error envelope.
type apiError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	base := strings.TrimRight(c.config.BaseURL, "/")
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		var e apiError
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Message != "" {
			return fmt.Errorf("api status %d: %s", resp.StatusCode, e.Message)
		}
		return fmt.Errorf("api status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Cards returns every card, from cache when fresh.
func (c *Client) Cards(ctx context.Context) ([]models.Card, error) {
	// Check cache first
	c.cacheMu.RLock()
	if time.Since(c.cacheTime) < c.config.CacheTTL && len(c.cache) > 0 {
		result := make([]models.Card, len(c.cache))
		copy(result, c.cache)
		c.cacheMu.RUnlock()
		return result, nil
	}
	c.cacheMu.RUnlock()

	var res []models.Card
	if err := c.do(ctx, http.MethodGet, "/api/cards", nil, &res); err != nil {
		return nil, err
	}

	c.cacheMu.Lock()
	c.cache = make([]models.Card, len(res))
	copy(c.cache, res)
	c.cacheTime = time.Now()
	c.cacheMu.Unlock()

	return res, nil
}

// Card fetches one card by id.
func (c *Client) Card(ctx context.Context, id int) (models.Card, error) {
	var card models.Card
	err := c.do(ctx, http.MethodGet, "/api/cards/"+strconv.Itoa(id), nil, &card)
	return card, err
}

// Calculate runs a one-shot calculation on the server.
func (c *Client) Calculate(ctx context.Context, req models.CalcRequest) (calc.Result, error) {
	var res calc.Result
	err := c.do(ctx, http.MethodPost, "/api/calc", req, &res)
	return res, err
}
