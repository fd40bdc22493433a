package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/voxhaus/voxhaus-core/internal/dispatch"
)

// ObserveDispatch records one dispatch outcome: a point per command with
// latency, attempt count, and resolution score, tagged for cheap grouping
// by action, domain, and failure kind.
//
// Implements the dispatcher's Metrics sink. Non-blocking.
func (c *Client) ObserveDispatch(req dispatch.Request, result *dispatch.Result, dispatchErr *dispatch.Error, latency time.Duration) {
	if !c.IsConnected() {
		return
	}

	tags := map[string]string{
		"action": string(req.Action),
	}
	fields := map[string]interface{}{
		"latency_ms": float64(latency.Milliseconds()),
	}

	if dispatchErr != nil {
		tags["status"] = "failed"
		tags["kind"] = string(dispatchErr.Kind)
	} else {
		tags["status"] = "completed"
		tags["domain"] = string(result.Domain)
		fields["attempts"] = result.Attempts
		fields["score"] = result.Score
		fields["healed"] = boolToInt(result.Healed)
	}

	c.writeAPI.WritePoint(write.NewPoint("dispatch", tags, fields, time.Now()))
}

// WriteRegistryMetric records a registry refresh: device count and the
// generation that was published.
func (c *Client) WriteRegistryMetric(generation uint64, deviceCount int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"registry_refresh",
		nil,
		map[string]interface{}{
			"generation": int64(generation), // #nosec G115 -- generations stay far below int64 range
			"devices":    deviceCount,
		},
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
// Use for measurements that don't fit the helpers.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
