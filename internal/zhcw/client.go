// Package zhcw fetches Union Lotto draw results from the zhcw.com JSON port.
// The endpoint is the one the official site's frontend calls: it expects
// browser-like headers and wraps its JSON in a jQuery JSONP callback.
package zhcw

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rewired-gh/lottoracle/internal/logger"
	"github.com/rewired-gh/lottoracle/internal/models"
)

const (
	transactionType = "10001001"
	lotteryID       = "1" // Union Lotto
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	referer         = "https://www.zhcw.com/"
	// The port caps history anyway; this is "everything" in practice.
	backfillIssueCount = 10000
)

// Client provides access to the zhcw draw feed
type Client struct {
	apiBaseURL     string
	game           models.Game
	httpClient     *http.Client
	maxRetries     int
	retryDelayBase time.Duration
}

// drawRow is one draw as the port returns it
type drawRow struct {
	Issue           string `json:"issue"`
	FrontWinningNum string `json:"frontWinningNum"` // Space-separated red balls
	BackWinningNum  string `json:"backWinningNum"`  // Blue ball
	OpenTime        string `json:"openTime"`
}

// portResponse is the payload inside the JSONP wrapper
type portResponse struct {
	Data []drawRow `json:"data"`
}

// NewClient creates a new draw feed client
func NewClient(apiBaseURL string, game models.Game, timeout time.Duration, maxRetries int, retryDelayBase time.Duration) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &Client{
		apiBaseURL: apiBaseURL,
		game:       game,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// FetchLatest retrieves the newest count draws from the feed and returns them
// in chronological order, oldest first. Rows that fail to parse or validate
// are logged and skipped.
func (c *Client) FetchLatest(ctx context.Context, count int) ([]models.Draw, error) {
	if count < 1 {
		return nil, fmt.Errorf("issue count must be at least 1, got %d", count)
	}

	resp, err := c.doRequest(ctx, c.portURL(count))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch draws: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	payload, err := stripJSONP(body)
	if err != nil {
		return nil, err
	}

	var response portResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, fmt.Errorf("failed to decode draws: %w", err)
	}

	draws := make([]models.Draw, 0, len(response.Data))
	for _, row := range response.Data {
		draw, err := c.parseRow(row)
		if err != nil {
			logger.Warn("skipping draw %q from feed: %v", row.Issue, err)
			continue
		}
		draws = append(draws, draw)
	}

	// The feed lists newest first; callers want chronological order.
	for i, j := 0, len(draws)-1; i < j; i, j = i+1, j-1 {
		draws[i], draws[j] = draws[j], draws[i]
	}
	return draws, nil
}

// FetchAll retrieves the full published draw history, oldest first.
func (c *Client) FetchAll(ctx context.Context) ([]models.Draw, error) {
	return c.FetchLatest(ctx, backfillIssueCount)
}

// portURL builds the client_json.php query for the given issue count.
func (c *Client) portURL(count int) string {
	ms := time.Now().UnixMilli()

	q := url.Values{}
	q.Set("callback", fmt.Sprintf("jQuery112206912852909937333_%d", ms))
	q.Set("transactionType", transactionType)
	q.Set("lotteryId", lotteryID)
	q.Set("issueCount", strconv.Itoa(count))
	q.Set("startIssue", "")
	q.Set("endIssue", "")
	q.Set("startDate", "")
	q.Set("endDate", "")
	q.Set("type", "0")
	q.Set("pageNum", "1")
	q.Set("pageSize", strconv.Itoa(count))
	q.Set("tt", fmt.Sprintf("%.7f", float64(ms)/1000+rand.Float64()))
	q.Set("_", strconv.FormatInt(ms, 10))

	return fmt.Sprintf("%s/port/client_json.php?%s", c.apiBaseURL, q.Encode())
}

// stripJSONP unwraps a callback(...) payload; bare JSON passes through.
func stripJSONP(body []byte) ([]byte, error) {
	s := string(body)
	start := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if start < 0 || end < start {
		trimmed := strings.TrimSpace(s)
		if strings.HasPrefix(trimmed, "{") {
			return []byte(trimmed), nil
		}
		return nil, fmt.Errorf("unexpected feed response shape: %.40q", s)
	}
	return []byte(s[start+1 : end]), nil
}

// parseRow converts a feed row into a validated draw.
func (c *Client) parseRow(row drawRow) (models.Draw, error) {
	fields := strings.Fields(row.FrontWinningNum)
	if len(fields) != c.game.RedCount {
		return models.Draw{}, fmt.Errorf("expected %d red balls, got %d", c.game.RedCount, len(fields))
	}

	reds := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return models.Draw{}, fmt.Errorf("bad red ball %q: %w", f, err)
		}
		reds = append(reds, n)
	}
	sort.Ints(reds)

	blue, err := strconv.Atoi(strings.TrimSpace(row.BackWinningNum))
	if err != nil {
		return models.Draw{}, fmt.Errorf("bad blue ball %q: %w", row.BackWinningNum, err)
	}

	draw := models.Draw{
		Issue:    strings.TrimSpace(row.Issue),
		RedBalls: reds,
		BlueBall: blue,
		Date:     strings.TrimSpace(row.OpenTime),
	}
	if err := draw.Validate(c.game); err != nil {
		return models.Draw{}, err
	}
	return draw, nil
}

// doRequest performs HTTP request with retry logic
func (c *Client) doRequest(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Referer", referer)
		req.Header.Set("Accept", "*/*")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
