package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/MarcGrol/shopconnector/lib/myevents"
)

type gcloudPublisher struct {
	client *pubsub.Client
}

func newGcloudPublisher(c context.Context) (Publisher, func(), error) {
	client, err := pubsub.NewClient(c, os.Getenv("GOOGLE_CLOUD_PROJECT"))
	if err != nil {
		return nil, func() {}, fmt.Errorf("error creating pubsub-client: %s", err)
	}

	return &gcloudPublisher{
			client: client,
		}, func() {
			client.Close()
		}, nil
}

func (p *gcloudPublisher) Publish(c context.Context, topicName string, event myevents.Event) error {
	envelope, err := wrap(topicName, event)
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("error marshalling envelope %s: %s", envelope, err)
	}

	result := p.client.Topic(topicName).Publish(c, &pubsub.Message{Data: data})
	_, err = result.Get(c)
	if err != nil {
		return fmt.Errorf("error publishing %s: %s", envelope, err)
	}

	return nil
}

func wrap(topicName string, event myevents.Event) (myevents.EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return myevents.EventEnvelope{}, fmt.Errorf("error marshalling event-payload: %s", err)
	}

	return myevents.EventEnvelope{
		CreatedAt:     time.Now(),
		Topic:         topicName,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(payload),
	}, nil
}
