package storage

import (
	"context"
	"sync"

	"github.com/spf13/cast"
)

// MemoryDocumentStore keeps collections in process memory with the
// same merge semantics as the redis backend. It is the default
// backend for single-node deployments and the backend the unit tests
// run against. All merge application happens under one mutex, so the
// atomicity requirement on Increment/ArrayUnion holds trivially.
type MemoryDocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
	subs        map[string]map[int]func(id string, doc Document)
	nextSubID   int
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		collections: make(map[string]map[string]Document),
		subs:        make(map[string]map[int]func(id string, doc Document)),
	}
}

func (m *MemoryDocumentStore) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return deepCopyDoc(doc), nil
}

func (m *MemoryDocumentStore) GetAll(_ context.Context, collection string) (map[string]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Document, len(m.collections[collection]))
	for id, doc := range m.collections[collection] {
		out[id] = deepCopyDoc(doc)
	}
	return out, nil
}

func (m *MemoryDocumentStore) SetMerge(_ context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]Document)
	}
	doc := m.collections[collection][id]
	if doc == nil {
		doc = make(Document)
		m.collections[collection][id] = doc
	}
	for path, value := range fields {
		if err := mergeField(doc, splitPath(path), value); err != nil {
			m.mu.Unlock()
			return err
		}
	}
	snapshot := deepCopyDoc(doc)
	var fns []func(id string, doc Document)
	for _, fn := range m.subs[collection] {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	// Feed delivery happens outside the lock so a subscriber may
	// read from the store again.
	for _, fn := range fns {
		fn(id, snapshot)
	}
	return nil
}

func (m *MemoryDocumentStore) Subscribe(collection string, fn func(id string, doc Document)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs[collection] == nil {
		m.subs[collection] = make(map[int]func(id string, doc Document))
	}
	subID := m.nextSubID
	m.nextSubID++
	m.subs[collection][subID] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs[collection], subID)
			m.mu.Unlock()
		})
	}, nil
}

func (m *MemoryDocumentStore) Close() error { return nil }

// mergeField walks the path, creating intermediate maps, and applies
// the leaf value with pseudo-value semantics.
func mergeField(doc Document, path []string, value any) error {
	for len(path) > 1 {
		child, ok := doc[path[0]].(map[string]any)
		if !ok {
			child = make(map[string]any)
			doc[path[0]] = child
		}
		doc = child
		path = path[1:]
	}
	key := path[0]
	switch v := value.(type) {
	case Increment:
		doc[key] = cast.ToFloat64(doc[key]) + float64(v)
	case ArrayUnion:
		arr, _ := doc[key].([]any)
		for _, el := range v {
			converted, err := docValue(el)
			if err != nil {
				return err
			}
			arr = append(arr, converted)
		}
		doc[key] = arr
	default:
		converted, err := docValue(value)
		if err != nil {
			return err
		}
		doc[key] = converted
	}
	return nil
}

func deepCopyDoc(doc Document) Document {
	cp := make(Document, len(doc))
	for k, v := range doc {
		cp[k] = deepCopyValue(v)
	}
	return cp
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyDoc(t)
	case []any:
		cp := make([]any, len(t))
		for i, el := range t {
			cp[i] = deepCopyValue(el)
		}
		return cp
	default:
		return v
	}
}
