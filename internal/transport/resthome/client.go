// Package resthome implements the backend transport over the home
// automation server's REST API.
//
// Device listing reads /api/states; invocation posts to
// /api/services/{domain}/{service}. A composed primitive carrying its own
// domain ("hass.turn_on") is posted under that domain; a bare primitive
// ("turn_on") is posted under the target device's own domain. Probing
// checks the service catalogue at /api/services.
package resthome

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/voxhaus/voxhaus-core/internal/infrastructure/config"
	"github.com/voxhaus/voxhaus-core/internal/transport"
)

// Client talks to the backend's REST API. Safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a REST transport from config.
func New(cfg config.RESTBackendConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
	}
}

// stateEntry is one row of the /api/states response.
type stateEntry struct {
	EntityID   string `json:"entity_id"`
	Attributes struct {
		FriendlyName string `json:"friendly_name"`
	} `json:"attributes"`
}

// ListDevices fetches every entity the backend exposes.
func (c *Client) ListDevices(ctx context.Context) ([]transport.Device, error) {
	body, err := c.get(ctx, "/api/states")
	if err != nil {
		return nil, err
	}

	var entries []stateEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decoding states response: %w", err)
	}

	devices := make([]transport.Device, 0, len(entries))
	for _, e := range entries {
		devices = append(devices, transport.Device{
			ID:   e.EntityID,
			Name: e.Attributes.FriendlyName,
		})
	}
	return devices, nil
}

// Invoke calls one service against one device. The response body, when the
// backend returns one, becomes the outcome detail.
func (c *Client) Invoke(ctx context.Context, primitive, deviceID string, params map[string]any) (transport.Outcome, error) {
	domain, service := splitPrimitive(primitive, deviceID)

	payload := make(map[string]any, len(params)+1)
	for k, v := range params {
		payload[k] = v
	}
	payload["entity_id"] = deviceID

	body, err := json.Marshal(payload)
	if err != nil {
		return transport.Outcome{}, fmt.Errorf("encoding invoke payload: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost,
		"/api/services/"+domain+"/"+service, bytes.NewReader(body))
	if err != nil {
		return transport.Outcome{}, err
	}

	outcome := transport.Outcome{State: "ok"}
	if len(respBody) > 0 {
		var detail map[string]any
		if json.Unmarshal(respBody, &detail) == nil && len(detail) > 0 {
			outcome.Detail = detail
		}
	}
	return outcome, nil
}

// serviceDomain is one row of the /api/services response.
type serviceDomain struct {
	Domain   string         `json:"domain"`
	Services map[string]any `json:"services"`
}

// Probe checks whether the composed primitive appears in the backend's
// service catalogue.
func (c *Client) Probe(ctx context.Context, primitive string) (bool, error) {
	body, err := c.get(ctx, "/api/services")
	if err != nil {
		return false, err
	}

	var catalogue []serviceDomain
	if err := json.Unmarshal(body, &catalogue); err != nil {
		return false, fmt.Errorf("decoding services response: %w", err)
	}

	domain, service, explicit := strings.Cut(primitive, ".")
	for _, d := range catalogue {
		if explicit {
			if d.Domain != domain {
				continue
			}
			if _, ok := d.Services[service]; ok {
				return true, nil
			}
			return false, nil
		}
		if _, ok := d.Services[primitive]; ok {
			return true, nil
		}
	}
	return false, nil
}

// splitPrimitive resolves the service domain for a composed primitive: an
// embedded domain wins, otherwise the device's own domain is used.
func splitPrimitive(primitive, deviceID string) (domain, service string) {
	if d, s, ok := strings.Cut(primitive, "."); ok {
		return d, s
	}
	if d, _, ok := strings.Cut(deviceID, "."); ok {
		return d, primitive
	}
	return "homeassistant", primitive
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// do performs one authenticated request and maps failures onto the
// transport error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyNetError(err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", transport.ErrConnectionReset, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", transport.ErrUnknownDevice, strings.TrimSpace(string(respBody)))
	case resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", transport.ErrRejected, strings.TrimSpace(string(respBody)))
	case resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		return nil, fmt.Errorf("%w: status %d", transport.ErrUnavailable, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", transport.ErrRejected, resp.StatusCode)
	}
}

// classifyNetError maps client-side transport failures onto sentinels.
func classifyNetError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", transport.ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", transport.ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", transport.ErrConnectionReset, err)
}
