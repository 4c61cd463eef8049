package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory keeps assets in process. It backs DB_DRIVER=memory runs.
type Memory struct {
	baseURL string
	objects map[string]memoryObject
	mu      sync.Mutex
}

type memoryObject struct {
	name        string
	contentType string
	data        []byte
}

func NewMemory(baseURL string) *Memory {
	return &Memory{baseURL: strings.TrimSuffix(baseURL, "/"), objects: map[string]memoryObject{}}
}

func (m *Memory) Upload(ctx context.Context, filename, contentType string, r io.Reader) (Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Asset{}, fmt.Errorf("reading %s: %w", filename, err)
	}
	id := primitive.NewObjectID().Hex()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[id] = memoryObject{name: filename, contentType: contentType, data: data}
	return Asset{ID: id, URL: m.baseURL + "/" + id}, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[id]; !ok {
		return ErrNotFound
	}
	delete(m.objects, id)
	return nil
}

func (m *Memory) Open(ctx context.Context, id string) (*Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Object{
		ReadCloser:  io.NopCloser(bytes.NewReader(obj.data)),
		Name:        obj.name,
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
	}, nil
}

// Len reports how many assets are stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
