package cosmos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vietddude/upgradewatch/internal/core/domain"
	"github.com/vietddude/upgradewatch/internal/infra/chain"
)

const (
	currentPlanPath = "/cosmos/upgrade/v1beta1/current_plan"
	statusPath      = "/status"
)

// Client queries a cosmos-sdk node: the upgrade module's current plan over
// the REST endpoint and the latest height over the tendermint RPC endpoint.
type Client struct {
	endpoint   string // REST base URL
	rpc        string // tendermint RPC base URL
	httpClient *http.Client
}

// NewClient creates a client for one node's endpoint pair.
func NewClient(endpoint, rpc string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		rpc:      strings.TrimRight(rpc, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// CurrentPlan fetches the scheduled upgrade plan. A response whose plan
// field is null or empty means no upgrade is scheduled and returns nil.
func (c *Client) CurrentPlan(ctx context.Context) (*domain.UpgradePlan, error) {
	body, err := c.get(ctx, c.endpoint+currentPlanPath, chain.KindUpgradeQueryFailed)
	if err != nil {
		return nil, err
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &chain.QueryError{Kind: chain.KindPlanFieldMissing, Err: err}
	}

	raw, ok := resp["plan"]
	if !ok {
		return nil, &chain.QueryError{Kind: chain.KindPlanFieldMissing}
	}

	trimmed := bytes.TrimSpace(raw)
	if string(trimmed) == "null" || string(trimmed) == "{}" {
		return nil, nil
	}

	var plan struct {
		Name   string          `json:"name"`
		Height json.RawMessage `json:"height"`
	}
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, &chain.QueryError{Kind: chain.KindPlanFieldMissing, Err: err}
	}

	height, err := parseFlexInt(plan.Height)
	if err != nil {
		return nil, &chain.QueryError{
			Kind: chain.KindPlanFieldMissing,
			Err:  fmt.Errorf("invalid plan height: %w", err),
		}
	}

	return &domain.UpgradePlan{Name: plan.Name, Height: height}, nil
}

// LatestHeight fetches result.sync_info.latest_block_height from /status.
func (c *Client) LatestHeight(ctx context.Context) (int64, error) {
	body, err := c.get(ctx, c.rpc+statusPath, chain.KindBlockQueryFailed)
	if err != nil {
		return 0, err
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, &chain.QueryError{Kind: chain.KindBlockFieldMissing, Err: err}
	}

	raw, ok := resp["result"]
	if !ok {
		return 0, &chain.QueryError{Kind: chain.KindBlockFieldMissing}
	}

	var result struct {
		SyncInfo struct {
			LatestBlockHeight json.RawMessage `json:"latest_block_height"`
		} `json:"sync_info"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return 0, &chain.QueryError{Kind: chain.KindBlockFieldMissing, Err: err}
	}
	if len(result.SyncInfo.LatestBlockHeight) == 0 {
		return 0, &chain.QueryError{Kind: chain.KindBlockFieldMissing}
	}

	height, err := parseFlexInt(result.SyncInfo.LatestBlockHeight)
	if err != nil {
		return 0, &chain.QueryError{
			Kind: chain.KindBlockFieldMissing,
			Err:  fmt.Errorf("invalid block height: %w", err),
		}
	}

	return height, nil
}

func (c *Client) get(ctx context.Context, url string, kind chain.ErrorKind) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &chain.QueryError{Kind: kind, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &chain.QueryError{Kind: kind, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &chain.QueryError{Kind: kind, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &chain.QueryError{Kind: kind, Body: string(body)}
	}

	return body, nil
}

// parseFlexInt parses an integer that cosmos APIs encode either as a JSON
// number or a quoted decimal string.
func parseFlexInt(raw json.RawMessage) (int64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseInt(s, 10, 64)
}
