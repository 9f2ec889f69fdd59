package mysession

import (
	"context"
	"encoding/json"
	"os"
)

// Store is the narrow key/value interface every session-scoped component
// works against. Values are stored as JSON. Keys are namespaced per
// storefront session; the session uid is taken from the context.
type Store interface {
	Get(c context.Context, key string) ([]byte, bool, error)
	Put(c context.Context, key string, value any) error
	Delete(c context.Context, key string) error
}

func New(c context.Context) (Store, func(), error) {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		return newGcloudStore(c)
	}

	return NewInMemoryStore(c)
}

// Value fetches a session value and unmarshals it into T.
func Value[T any](c context.Context, s Store, key string) (T, bool, error) {
	var value T

	data, exists, err := s.Get(c, key)
	if err != nil || !exists {
		return value, false, err
	}

	err = json.Unmarshal(data, &value)
	if err != nil {
		return value, false, err
	}

	return value, true, nil
}
