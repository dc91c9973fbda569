package mqtt

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/irrigator/internal/logic"
)

// bufferCapacity is how many messages are kept while the broker is away.
const bufferCapacity = 100

// publishTimeout bounds how long a connected publish may take.
const publishTimeout = 5 * time.Second

// RealPublisher publishes to an actual MQTT broker. Messages published
// while disconnected are buffered and replayed on (re)connect.
type RealPublisher struct {
	client paho.Client

	mu            sync.Mutex
	buf           *ringBuffer
	connectedOnce bool
}

// NewRealPublisher creates a publisher for the given broker. If the broker
// is unreachable at startup the client keeps retrying in the background
// and messages are buffered meanwhile.
func NewRealPublisher(broker, clientID string) (*RealPublisher, error) {
	p := &RealPublisher{buf: newRingBuffer(bufferCapacity)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, WillPayload(time.Now()), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			slog.Warn("mqtt connection lost", "err", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		slog.Warn("mqtt broker not reachable yet, buffering messages", "broker", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// onConnect replays buffered messages. paho runs it on its own goroutine,
// after the client already reports the connection open. The replay holds
// p.mu so a concurrent publish either lands in the buffer before the drain
// or goes out after the replay.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending := p.buf.drainAll()
	if p.connectedOnce {
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "RECONNECTED"})
		c.Publish(TopicSystem, 1, false, payload)
		slog.Info("mqtt reconnected", "buffered", len(pending))
	}
	p.connectedOnce = true

	for _, m := range pending {
		c.Publish(m.topic, m.qos, m.retained, m.payload)
	}
}

// publish sends payload, or buffers it while the broker is away.
//
// A publish that times out is buffered and also reported as an error. paho
// may still deliver the in-flight message, so after a reconnect the broker
// can see it twice: delivery across a timeout is at-least-once.
func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	msg := bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained}

	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.buf.push(msg)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		p.mu.Lock()
		p.buf.push(msg)
		p.mu.Unlock()
		return fmt.Errorf("publish timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish on %s: %w", topic, err)
	}
	return nil
}

// Publish sends an irrigation event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.publish(Topic, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	return p.publish(TopicSystem, 1, event.Retained, payload)
}

// IsConnected reports whether the client currently has a live connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
