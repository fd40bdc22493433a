// Package influxdb provides time-series telemetry for dispatches.
//
// Every executed or failed command becomes a point in the dispatch
// measurement: latency, attempts, resolution score, failure kind. Registry
// refreshes land in a second measurement. Writes are batched and
// non-blocking so telemetry can never slow a voice command, and the whole
// package is optional — when disabled in config the dispatcher simply runs
// without a metrics sink.
package influxdb
