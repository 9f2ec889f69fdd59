package mypublisher

import (
	"context"
	"os"

	"github.com/MarcGrol/shopconnector/lib/myevents"
)

// Publisher is the fire-and-forget event sink: failures are logged by the
// caller and never block the business operation that emitted the event.
//
//go:generate mockgen -source=api.go -package mypublisher -destination publisher_mock.go Publisher
type Publisher interface {
	Publish(c context.Context, topic string, event myevents.Event) error
}

func New(c context.Context) (Publisher, func(), error) {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		return newGcloudPublisher(c)
	}

	return newLogPublisher()
}
