// Package client talks to the clicker persistence service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/TheRealTwizzy/clicker/internal/wire"
)

// ErrPlayerNotFound is returned by LoadPlayer for any non-200 answer.
var ErrPlayerNotFound = errors.New("player not found")

const DefaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the service endpoint at baseURL. A nil
// httpClient gets DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    httpClient,
	}
}

func (c *Client) LoadPlayer(ctx context.Context, playerID string) (*wire.PlayerRecord, error) {
	q := url.Values{}
	q.Set("action", wire.ActionPlayer)
	q.Set("playerId", playerID)

	res, err := c.do(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		drain(res.Body)
		return nil, fmt.Errorf("%w: status %d", ErrPlayerNotFound, res.StatusCode)
	}

	var record wire.PlayerRecord
	if err := decodeJSON(res.Body, &record); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return &record, nil
}

func (c *Client) RegisterPlayer(ctx context.Context, playerID string, nickname string) error {
	res, err := c.do(ctx, http.MethodPost, c.baseURL, wire.RegisterRequest{
		PlayerID: playerID,
		Nickname: nickname,
	})
	if err != nil {
		return err
	}
	defer res.Body.Close()
	drain(res.Body)

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return fmt.Errorf("register player: status %d", res.StatusCode)
	}
	return nil
}

func (c *Client) SavePlayer(ctx context.Context, save wire.SaveRequest) error {
	res, err := c.do(ctx, http.MethodPut, c.baseURL, save)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	drain(res.Body)

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("save player: status %d", res.StatusCode)
	}
	return nil
}

// FetchLeaderboard returns the service ranking sorted by totalClicks,
// highest first.
func (c *Client) FetchLeaderboard(ctx context.Context) ([]wire.LeaderboardEntry, error) {
	q := url.Values{}
	q.Set("action", wire.ActionLeaderboard)

	res, err := c.do(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		drain(res.Body)
		return nil, fmt.Errorf("leaderboard: status %d", res.StatusCode)
	}

	var response wire.LeaderboardResponse
	if err := decodeJSON(res.Body, &response); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	entries := response.Leaderboard
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalClicks > entries[j].TotalClicks
	})
	return entries, nil
}

func (c *Client) do(ctx context.Context, method string, target string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func decodeJSON(reader io.Reader, target interface{}) error {
	return json.NewDecoder(reader).Decode(target)
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64*1024))
}
