package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// MQTTPublisher mirrors broker events onto an MQTT broker so external
// consumers (dashboards, depot displays) can follow ticket changes without
// holding an HTTP connection to this service.
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
}

// NewMQTTPublisher connects to the broker at url. Topic names are published
// under the given prefix, e.g. "fleet/tickets".
func NewMQTTPublisher(url, clientID, prefix string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(url).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &MQTTPublisher{client: client, prefix: prefix}, nil
}

// Publish sends the event fire-and-forget at QoS 0. Delivery to external
// consumers is best effort; the in-process broker stays authoritative.
func (p *MQTTPublisher) Publish(topic string, evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	token := p.client.Publish(p.prefix+"/"+topic, 0, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.WithError(token.Error()).Warn("mqtt publish failed")
		}
	}()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
