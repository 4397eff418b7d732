// Package events publishes issue lifecycle events to an MQTT broker for the
// live portal views. Publishing is best-effort: a broker outage never fails
// the request that produced the event.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/dimeda/stretcher-service/internal/models"
)

// Publisher emits issue lifecycle events.
type Publisher interface {
	IssueCreated(issue *models.Issue)
	IssueUpdated(issue *models.Issue)
}

// NoopPublisher drops all events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) IssueCreated(*models.Issue) {}
func (NoopPublisher) IssueUpdated(*models.Issue) {}

// issueEvent is the wire payload for issue topics.
type issueEvent struct {
	Event          string     `json:"event"`
	IssueID        string     `json:"issue_id"`
	IssueCode      string     `json:"issue_code"`
	ProductID      string     `json:"product_id"`
	Status         string     `json:"status"`
	TechnicianName string     `json:"technician_name,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}

// MQTTPublisher publishes issue events to <prefix>/issues/<id>/<event>.
type MQTTPublisher struct {
	client      mqtt.Client
	topicPrefix string
	log         *log.Entry
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(brokerURL, topicPrefix string, logger *log.Entry) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(fmt.Sprintf("stretcher-service-%d", time.Now().UnixNano())).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.WaitTimeout(10*time.Second) && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	return &MQTTPublisher{client: client, topicPrefix: topicPrefix, log: logger}, nil
}

func (p *MQTTPublisher) IssueCreated(issue *models.Issue) { p.publish("created", issue) }
func (p *MQTTPublisher) IssueUpdated(issue *models.Issue) { p.publish("updated", issue) }

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

func (p *MQTTPublisher) publish(event string, issue *models.Issue) {
	payload, err := json.Marshal(issueEvent{
		Event:          event,
		IssueID:        issue.ID,
		IssueCode:      issue.IssueCode,
		ProductID:      issue.ProductID,
		Status:         issue.Status,
		TechnicianName: issue.TechnicianName,
		ResolvedAt:     issue.ResolvedAt,
	})
	if err != nil {
		p.log.WithError(err).Error("event payload marshal failed")
		return
	}

	topic := fmt.Sprintf("%s/issues/%s/%s", p.topicPrefix, issue.ID, event)
	token := p.client.Publish(topic, 0, false, payload)
	go func() {
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			p.log.WithField("topic", topic).WithError(token.Error()).Warn("event publish failed")
		}
	}()
}
