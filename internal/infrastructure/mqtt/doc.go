// Package mqtt wraps paho.mqtt.golang for the MQTT backend transport.
//
// The wrapper adds what the raw library leaves to callers: subscription
// tracking with automatic restoration on reconnect, panic-safe message
// handlers, Last Will and Testament for crash detection, retained status
// publication, and consistent topic naming through the Topics builders.
//
// Backend calls ride a request/response topic pair keyed by request ID
// (voxhaus/request/{kind}/{id} answered on voxhaus/response/{kind}/{id});
// the correlation itself lives in the transport/mqttbridge package, which
// builds on this client.
package mqtt
