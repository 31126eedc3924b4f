// Package sync keeps the facet index in step with item changes published
// on the message broker.
package sync

import (
	"fmt"
	"log"

	"github.com/bytedance/sonic"
	"github.com/matst80/slask-refine/pkg/facet"
	"github.com/matst80/slask-refine/pkg/messaging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	noItemChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskrefine_item_changes_total",
		Help: "The total number of item changes applied to the index",
	}, []string{"kind"})
)

// ItemChange is the message body on the item change topic.
type ItemChange struct {
	Upserted []*facet.Item `json:"upserted,omitempty"`
	Deleted  []uint32      `json:"deleted,omitempty"`
}

// ApplyItemChange decodes body and applies it to idx.
func ApplyItemChange(idx *facet.Index, body []byte) (*ItemChange, error) {
	var change ItemChange
	if err := sonic.Unmarshal(body, &change); err != nil {
		return nil, fmt.Errorf("decode item change: %w", err)
	}
	for _, item := range change.Upserted {
		if item == nil {
			continue
		}
		idx.UpsertItem(item)
	}
	for _, id := range change.Deleted {
		idx.DeleteItem(id)
	}
	noItemChanges.WithLabelValues("upsert").Add(float64(len(change.Upserted)))
	noItemChanges.WithLabelValues("delete").Add(float64(len(change.Deleted)))
	return &change, nil
}

// ListenForItemChanges consumes the item change topic of prefix until conn
// closes. onApplied, when set, runs after each applied change.
func ListenForItemChanges(conn *amqp.Connection, prefix string, idx *facet.Index, onApplied func(*ItemChange)) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err = messaging.DefineTopic(ch, prefix, messaging.ItemsChanged); err != nil {
		ch.Close()
		return err
	}
	log.Printf("listening for item changes on %s", prefix)
	return messaging.ListenToTopic(ch, prefix, messaging.ItemsChanged, func(d amqp.Delivery) error {
		change, err := ApplyItemChange(idx, d.Body)
		if err != nil {
			return err
		}
		log.Printf("applied %d upserts and %d deletes", len(change.Upserted), len(change.Deleted))
		if onApplied != nil {
			onApplied(change)
		}
		return nil
	})
}
