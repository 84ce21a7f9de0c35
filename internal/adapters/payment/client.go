package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"stayhub/internal/adapters/observability"
	"stayhub/internal/domain"
)

// Client talks to the payment gateway's charge API. Calls are client-side
// rate limited and retried on 429/transient 5xx, honoring Retry-After.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("gateway API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

type chargeRequest struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type chargeStatus struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"` // pending|settlement|deny|expire
}

func (c *Client) Charge(ctx context.Context, code string, amount int64) error {
	body, _ := json.Marshal(chargeRequest{OrderID: code, GrossAmount: amount})
	var out chargeStatus
	return c.do(ctx, http.MethodPost, c.base+"/v2/charge", "charge", body, &out)
}

func (c *Client) Status(ctx context.Context, code string) (domain.PaymentStatus, error) {
	var out chargeStatus
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/v2/%s/status", c.base, code), "status", nil, &out); err != nil {
		return "", err
	}
	switch out.Status {
	case "settlement", "capture":
		return domain.PaymentSettled, nil
	case "deny", "expire", "cancel":
		return domain.PaymentFailed, nil
	default:
		return domain.PaymentPending, nil
	}
}

// endpoint is the fixed metric label for the call ("charge", "status");
// URLs embed per-booking codes and must not become label values.
func (c *Client) do(ctx context.Context, method, url, endpoint string, body []byte, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, rd)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Basic "+c.key)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		observability.ObserveExternal("gateway", endpoint, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return fmt.Errorf("%w: charge %s", domain.ErrNotFound, url)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			wait := backoff(i, resp.Header.Get("Retry-After"))
			resp.Body.Close()
			lastErr = fmt.Errorf("gateway %s: status %d", url, resp.StatusCode)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		case resp.StatusCode >= 400:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return fmt.Errorf("gateway %s: status %d: %s", url, resp.StatusCode, b)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("gateway %s: decode: %w", url, err)
		}
		return nil
	}
	return lastErr
}

func backoff(attempt int, retryAfter string) time.Duration {
	if retryAfter != "" {
		if s, err := strconv.Atoi(retryAfter); err == nil && s > 0 && s <= 60 {
			return time.Duration(s) * time.Second
		}
	}
	return time.Duration(1<<attempt) * 250 * time.Millisecond
}
