// Package transport defines the contract between Voxhaus Core and a
// smart-home backend.
//
// The core depends on exactly three backend operations: listing devices,
// invoking a named primitive against a device, and probing whether a
// primitive name exists. Everything else about the backend — its wire
// protocol, authentication, framing — is owned by the implementations:
//
//   - transport/resthome: HTTP REST backends
//   - transport/mqttbridge: backends reachable over an MQTT broker
//
// Implementations translate their native failures into this package's
// sentinel errors so the dispatcher can apply a uniform retry policy.
package transport
