// Package mqtt provides MQTT client connectivity for UserHub.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// The client is publish-only: UserHub emits events and consumes nothing.
//
// # Architecture
//
// UserHub publishes domain events (user registrations) over MQTT so
// downstream services (mailers, CRM sync, analytics) can react without
// coupling to the HTTP API.
//
//	UserHub <-> MQTT Broker <-> Downstream consumers
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Publish event
//	topic := mqtt.Topics{}.UserRegistered()
//	client.Publish(topic, []byte(`{"user_id":42}`), 1, false)
package mqtt
