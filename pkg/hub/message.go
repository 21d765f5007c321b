// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern.
package hub

// Message is one encoded payload to fan out to clients. Topic scopes it;
// clients subscribed to a topic only receive messages for that topic,
// clients without one receive everything.
type Message struct {
	Topic string
	Data  []byte
}

// NewMessage creates a message from pre-encoded JSON
func NewMessage(topic string, data []byte) Message {
	return Message{Topic: topic, Data: data}
}
