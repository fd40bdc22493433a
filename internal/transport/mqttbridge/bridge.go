// Package mqttbridge implements the backend transport over MQTT.
//
// Calls are correlated request/response pairs: each call publishes a JSON
// payload to voxhaus/request/{kind}/{request_id} and waits for the backend
// bridge to answer on the matching voxhaus/response/{kind}/{request_id}
// topic. One wildcard subscription covers all responses; a pending-call map
// keyed by request ID routes each answer to its waiting caller.
package mqttbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/voxhaus/voxhaus-core/internal/infrastructure/mqtt"
	"github.com/voxhaus/voxhaus-core/internal/transport"
)

// Request kinds on the wire.
const (
	kindList   = "list"
	kindInvoke = "invoke"
	kindProbe  = "probe"
)

// Broker is the slice of the MQTT client the bridge needs. Satisfied by
// *mqtt.Client.
type Broker interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	SetOnConnect(callback func())
}

// Bridge is a transport.Transport backed by an MQTT request/response pair.
// It also implements transport.Reconnectable so discovery can re-probe when
// the broker link is rebuilt.
type Bridge struct {
	client Broker
	qos    byte
	topics mqtt.Topics

	mu      sync.Mutex
	pending map[string]chan []byte

	reconnectMu sync.Mutex
	onReconnect []func()
}

// New creates the bridge and subscribes to the response wildcard. The
// client must already be connected.
func New(client Broker, qos byte) (*Bridge, error) {
	b := &Bridge{
		client:  client,
		qos:     qos,
		pending: make(map[string]chan []byte),
	}

	if err := client.Subscribe(b.topics.AllResponses(), qos, b.handleResponse); err != nil {
		return nil, fmt.Errorf("subscribing to responses: %w", err)
	}

	client.SetOnConnect(b.handleConnect)
	return b, nil
}

// OnReconnect registers a callback fired after the broker link is rebuilt.
// The client is connected before the bridge exists, so its initial on-connect
// fires before the bridge's handler is registered; every connect the bridge
// observes is therefore a genuine reconnect.
func (b *Bridge) OnReconnect(fn func()) {
	b.reconnectMu.Lock()
	defer b.reconnectMu.Unlock()
	b.onReconnect = append(b.onReconnect, fn)
}

func (b *Bridge) handleConnect() {
	b.reconnectMu.Lock()
	callbacks := make([]func(), len(b.onReconnect))
	copy(callbacks, b.onReconnect)
	b.reconnectMu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// handleResponse routes a response payload to the caller waiting on its
// request ID. Responses with no waiter (late arrivals) are dropped.
func (b *Bridge) handleResponse(topic string, payload []byte) error {
	requestID := topic[strings.LastIndex(topic, "/")+1:]

	b.mu.Lock()
	ch, ok := b.pending[requestID]
	if ok {
		delete(b.pending, requestID)
	}
	b.mu.Unlock()

	if ok {
		ch <- payload
	}
	return nil
}

// wireError is the error half of a response payload.
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// toTransportError maps wire error codes onto the transport sentinels.
func (e *wireError) toTransportError() error {
	var sentinel error
	switch e.Code {
	case "unknown_device":
		sentinel = transport.ErrUnknownDevice
	case "unknown_primitive":
		sentinel = transport.ErrUnknownPrimitive
	case "unavailable":
		sentinel = transport.ErrUnavailable
	case "timeout":
		sentinel = transport.ErrTimeout
	default:
		sentinel = transport.ErrRejected
	}
	return fmt.Errorf("%w: %s", sentinel, e.Message)
}

// call performs one correlated request and decodes the response into out.
func (b *Bridge) call(ctx context.Context, kind string, request any, out any) error {
	requestID := "req-" + uuid.NewString()[:8]

	payload, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", kind, err)
	}

	ch := make(chan []byte, 1)
	b.mu.Lock()
	b.pending[requestID] = ch
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, requestID)
		b.mu.Unlock()
	}()

	if err := b.client.Publish(b.topics.Request(kind, requestID), payload, b.qos, false); err != nil {
		return fmt.Errorf("%w: publishing %s request: %v", transport.ErrUnavailable, kind, err)
	}

	var response []byte
	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: waiting for %s response", transport.ErrTimeout, kind)
		}
		return ctx.Err()
	case response = <-ch:
	}

	var envelope struct {
		Error *wireError `json:"error"`
	}
	if err := json.Unmarshal(response, &envelope); err != nil {
		return fmt.Errorf("decoding %s response: %w", kind, err)
	}
	if envelope.Error != nil {
		return envelope.Error.toTransportError()
	}

	if out != nil {
		if err := json.Unmarshal(response, out); err != nil {
			return fmt.Errorf("decoding %s response: %w", kind, err)
		}
	}
	return nil
}

// ListDevices fetches the backend's device list.
func (b *Bridge) ListDevices(ctx context.Context) ([]transport.Device, error) {
	var response struct {
		Devices []transport.Device `json:"devices"`
	}
	if err := b.call(ctx, kindList, struct{}{}, &response); err != nil {
		return nil, err
	}
	return response.Devices, nil
}

// Invoke executes one primitive against one device.
func (b *Bridge) Invoke(ctx context.Context, primitive, deviceID string, params map[string]any) (transport.Outcome, error) {
	request := map[string]any{
		"primitive": primitive,
		"device_id": deviceID,
	}
	if len(params) > 0 {
		request["params"] = params
	}

	var outcome transport.Outcome
	if err := b.call(ctx, kindInvoke, request, &outcome); err != nil {
		return transport.Outcome{}, err
	}
	if outcome.State == "" {
		outcome.State = "ok"
	}
	return outcome, nil
}

// Probe asks the backend whether it supports a primitive.
func (b *Bridge) Probe(ctx context.Context, primitive string) (bool, error) {
	var response struct {
		Supported bool `json:"supported"`
	}
	err := b.call(ctx, kindProbe, map[string]any{"primitive": primitive}, &response)
	if err != nil {
		return false, err
	}
	return response.Supported, nil
}
