// internal/adapters/themes/client.go
package themes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stayscore/internal/domain"
)

// Client talks to the theme-extraction collaborator. The service is opaque:
// we send snapshot-derived text, it returns positive/negative themes, and we
// store the answer verbatim.
type Client struct {
	base string
	key  string
	hc   *http.Client
}

func New(base, key string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		key:  key,
		hc:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Extract(ctx context.Context, req domain.ThemeRequest) (domain.ThemeReport, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.ThemeReport{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/themes", bytes.NewReader(body))
	if err != nil {
		return domain.ThemeReport{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		httpReq.Header.Set("X-API-Key", c.key)
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return domain.ThemeReport{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.ThemeReport{}, fmt.Errorf("themes: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out domain.ThemeReport
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.ThemeReport{}, fmt.Errorf("themes: decode: %w", err)
	}
	return out, nil
}
