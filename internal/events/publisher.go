package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"invoicing-service/internal/models"
)

const (
	StreamName = "INVOICE_EVENTS"

	InvoiceCreated         = "invoice.created"
	InvoiceStatusChanged   = "invoice.status_changed"
	InvoiceNumberAllocated = "invoice.number_allocated"
	CreditNoteCreated      = "invoice.credit_note.created"
	PaymentOrderCreated    = "invoice.payment_order.created"
)

// Event is the envelope published for every invoicing event
type Event struct {
	ID         string          `json:"id"`
	EventType  string          `json:"eventType"`
	OwnerID    string          `json:"ownerId"`
	Timestamp  time.Time       `json:"timestamp"`
	EntityID   string          `json:"entityId,omitempty"`
	Number     string          `json:"number,omitempty"`
	Status     string          `json:"status,omitempty"`
	PrevStatus string          `json:"previousStatus,omitempty"`
	Total      decimal.Decimal `json:"total,omitempty"`
	Data       interface{}     `json:"data,omitempty"`
}

// Publisher publishes invoicing events to NATS JetStream. A nil *Publisher
// is valid and drops every event.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the invoice stream exists
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.InfoLevel)
	}
	entry := logger.WithField("component", "invoice-events")

	nc, err := nats.Connect(natsURL,
		nats.Name("invoicing-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			entry.Infof("Reconnected to %s", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			entry.WithError(err).Warn("Disconnected from NATS")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			entry.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"invoice.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour * 7,
		Storage:   jetstream.FileStorage,
		Replicas:  1,
	})
	if err != nil {
		entry.WithError(err).Warn("Failed to ensure invoice stream (may already exist)")
	}

	return &Publisher{nc: nc, js: js, logger: entry}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p != nil && p.nc != nil {
		p.nc.Close()
	}
}

// PublishInvoiceCreated publishes an invoice.created event
func (p *Publisher) PublishInvoiceCreated(ctx context.Context, invoice *models.Invoice) {
	p.publish(ctx, Event{
		EventType: InvoiceCreated,
		OwnerID:   invoice.OwnerID,
		EntityID:  invoice.ID.String(),
		Number:    invoice.InvoiceNumber,
		Status:    string(invoice.Status),
		Total:     invoice.Total,
	})
}

// PublishInvoiceStatusChanged publishes an invoice.status_changed event
func (p *Publisher) PublishInvoiceStatusChanged(ctx context.Context, invoice *models.Invoice, from models.InvoiceStatus) {
	p.publish(ctx, Event{
		EventType:  InvoiceStatusChanged,
		OwnerID:    invoice.OwnerID,
		EntityID:   invoice.ID.String(),
		Number:     invoice.InvoiceNumber,
		Status:     string(invoice.Status),
		PrevStatus: string(from),
		Total:      invoice.Total,
	})
}

// PublishNumberAllocated publishes an invoice.number_allocated event
func (p *Publisher) PublishNumberAllocated(ctx context.Context, ownerID, draftID, number string) {
	p.publish(ctx, Event{
		EventType: InvoiceNumberAllocated,
		OwnerID:   ownerID,
		EntityID:  draftID,
		Number:    number,
	})
}

// PublishCreditNoteCreated publishes a credit note event
func (p *Publisher) PublishCreditNoteCreated(ctx context.Context, note *models.CreditNote) {
	p.publish(ctx, Event{
		EventType: CreditNoteCreated,
		OwnerID:   note.OwnerID,
		EntityID:  note.ID.String(),
		Number:    note.CreditNoteNumber,
		Status:    string(note.Status),
		Total:     note.Total,
		Data:      map[string]string{"invoiceId": note.InvoiceID.String()},
	})
}

// PublishPaymentOrderCreated publishes a payment order event
func (p *Publisher) PublishPaymentOrderCreated(ctx context.Context, order *models.PaymentOrder) {
	p.publish(ctx, Event{
		EventType: PaymentOrderCreated,
		OwnerID:   order.OwnerID,
		EntityID:  order.ID.String(),
		Status:    string(order.Status),
		Total:     order.Amount,
		Data: map[string]string{
			"plan":           string(order.Plan),
			"billingCycle":   string(order.BillingCycle),
			"gateway":        string(order.Gateway),
			"gatewayOrderId": order.GatewayOrderID,
		},
	})
}

// publish is best effort: failures are logged, never returned
func (p *Publisher) publish(ctx context.Context, event Event) {
	if p == nil || p.js == nil {
		return
	}
	event.ID = uuid.New().String()
	event.Timestamp = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("eventType", event.EventType).Error("Failed to marshal event")
		return
	}

	if _, err := p.js.Publish(ctx, event.EventType, data); err != nil {
		p.logger.WithError(err).WithField("eventType", event.EventType).Warn("Failed to publish event")
		return
	}
	p.logger.WithFields(logrus.Fields{
		"eventType": event.EventType,
		"entityId":  event.EntityID,
	}).Debug("Published event")
}
