package mysession

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"cloud.google.com/go/datastore"
)

const kind = "SessionValue"

type sessionEntity struct {
	Value []byte `datastore:",noindex"`
}

type gcloudStore struct {
	client *datastore.Client
}

func newGcloudStore(c context.Context) (*gcloudStore, func(), error) {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	client, err := datastore.NewClient(c, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating datastore-client: %s", err)
	}

	return &gcloudStore{
			client: client,
		}, func() {
			client.Close()
		}, nil
}

func (s *gcloudStore) Get(c context.Context, key string) ([]byte, bool, error) {
	entity := sessionEntity{}

	err := s.client.Get(c, datastore.NameKey(kind, scopedKey(c, key), nil), &entity)
	if err != nil {
		if err == datastore.ErrNoSuchEntity {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error fetching session value %s: %s", key, err)
	}

	return entity.Value, true, nil
}

func (s *gcloudStore) Put(c context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	_, err = s.client.Put(c, datastore.NameKey(kind, scopedKey(c, key), nil), &sessionEntity{Value: data})
	if err != nil {
		return fmt.Errorf("error storing session value %s: %s", key, err)
	}

	return nil
}

func (s *gcloudStore) Delete(c context.Context, key string) error {
	err := s.client.Delete(c, datastore.NameKey(kind, scopedKey(c, key), nil))
	if err != nil && err != datastore.ErrNoSuchEntity {
		return fmt.Errorf("error deleting session value %s: %s", key, err)
	}

	return nil
}
