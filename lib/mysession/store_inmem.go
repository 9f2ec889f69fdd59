package mysession

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/MarcGrol/shopconnector/lib/mycontext"
)

type InMemoryStore struct {
	sync.Mutex
	Items map[string][]byte
}

func NewInMemoryStore(c context.Context) (*InMemoryStore, func(), error) {
	return &InMemoryStore{
		Items: make(map[string][]byte),
	}, func() {}, nil
}

func (s *InMemoryStore) Get(c context.Context, key string) ([]byte, bool, error) {
	s.Lock()
	defer s.Unlock()

	data, exists := s.Items[scopedKey(c, key)]

	return data, exists, nil
}

func (s *InMemoryStore) Put(c context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	s.Items[scopedKey(c, key)] = data

	return nil
}

func (s *InMemoryStore) Delete(c context.Context, key string) error {
	s.Lock()
	defer s.Unlock()

	delete(s.Items, scopedKey(c, key))

	return nil
}

func scopedKey(c context.Context, key string) string {
	sessionUID := mycontext.SessionUID(c)
	if sessionUID == "" {
		sessionUID = "anonymous"
	}

	return sessionUID + "/" + key
}
