package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"hotseatd/internal/structures"
)

// RedisDocumentStore maps each document onto a redis hash. Field
// names are the dotted merge paths and every value is JSON-encoded,
// which keeps plain integers HINCRBY-compatible. Increment uses
// HINCRBY and ArrayUnion a Lua script, so concurrent writers cannot
// lose updates. A pub/sub channel per collection acts as the change
// feed: writers publish the document id, subscribers re-fetch the
// document and deliver the full snapshot.
type RedisDocumentStore struct {
	client *redis.Client
}

// setMapScript replaces a field wholesale, clearing any stale dotted
// children left by earlier path-level merges to the same subtree.
var setMapScript = redis.NewScript(`
local prefix = ARGV[1] .. '.'
for _, f in ipairs(redis.call('HKEYS', KEYS[1])) do
  if string.sub(f, 1, #prefix) == prefix then
    redis.call('HDEL', KEYS[1], f)
  end
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1
`)

// arrayUnionScript appends JSON elements to the array stored at a
// field, atomically with respect to other writers.
var arrayUnionScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
local arr
if cur then arr = cjson.decode(cur) else arr = {} end
for i = 2, #ARGV do
  arr[#arr + 1] = cjson.decode(ARGV[i])
end
redis.call('HSET', KEYS[1], ARGV[1], cjson.encode(arr))
return #arr
`)

func NewRedisDocumentStore(conf structures.RedisConfig) (*RedisDocumentStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("%w: ping %s: %v", ErrUnavailable, conf.Addr, err)
	}
	return &RedisDocumentStore{client: client}, nil
}

func (r *RedisDocumentStore) docKey(collection, id string) string {
	return collection + ":" + id
}

func (r *RedisDocumentStore) indexKey(collection string) string {
	return "idx:" + collection
}

func (r *RedisDocumentStore) feedChannel(collection string) string {
	return "feed:" + collection
}

func (r *RedisDocumentStore) Get(ctx context.Context, collection, id string) (Document, error) {
	raw, err := r.client.HGetAll(ctx, r.docKey(collection, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: hgetall: %v", ErrUnavailable, err)
	}
	if len(raw) == 0 {
		return nil, ErrNotFound
	}
	return unflatten(raw)
}

func (r *RedisDocumentStore) GetAll(ctx context.Context, collection string) (map[string]Document, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: smembers: %v", ErrUnavailable, err)
	}
	out := make(map[string]Document, len(ids))
	for _, id := range ids {
		doc, err := r.Get(ctx, collection, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = doc
	}
	return out, nil
}

func (r *RedisDocumentStore) SetMerge(ctx context.Context, collection, id string, fields map[string]any) error {
	key := r.docKey(collection, id)
	for path, value := range fields {
		switch v := value.(type) {
		case Increment:
			if err := r.client.HIncrBy(ctx, key, path, int64(v)).Err(); err != nil {
				return fmt.Errorf("%w: hincrby %s: %v", ErrUnavailable, path, err)
			}
		case ArrayUnion:
			args := make([]any, 0, len(v)+1)
			args = append(args, path)
			for _, el := range v {
				raw, err := json.Marshal(el)
				if err != nil {
					return err
				}
				args = append(args, string(raw))
			}
			if err := arrayUnionScript.Run(ctx, r.client, []string{key}, args...).Err(); err != nil {
				return fmt.Errorf("%w: array union %s: %v", ErrUnavailable, path, err)
			}
		default:
			raw, err := json.Marshal(value)
			if err != nil {
				return err
			}
			if err := setMapScript.Run(ctx, r.client, []string{key}, path, string(raw)).Err(); err != nil {
				return fmt.Errorf("%w: hset %s: %v", ErrUnavailable, path, err)
			}
		}
	}
	if err := r.client.SAdd(ctx, r.indexKey(collection), id).Err(); err != nil {
		return fmt.Errorf("%w: sadd: %v", ErrUnavailable, err)
	}
	if err := r.client.Publish(ctx, r.feedChannel(collection), id).Err(); err != nil {
		return fmt.Errorf("%w: publish: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisDocumentStore) Subscribe(collection string, fn func(id string, doc Document)) (func(), error) {
	pubsub := r.client.Subscribe(context.Background(), r.feedChannel(collection))
	if _, err := pubsub.Receive(context.Background()); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%w: subscribe: %v", ErrUnavailable, err)
	}
	go func() {
		for msg := range pubsub.Channel() {
			doc, err := r.Get(context.Background(), collection, msg.Payload)
			if err != nil {
				continue
			}
			fn(msg.Payload, doc)
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { _ = pubsub.Close() })
	}, nil
}

func (r *RedisDocumentStore) Close() error {
	return r.client.Close()
}

// unflatten rebuilds a nested document from dotted hash fields.
func unflatten(raw map[string]string) (Document, error) {
	doc := make(Document, len(raw))
	for field, encoded := range raw {
		var value any
		if err := json.Unmarshal([]byte(encoded), &value); err != nil {
			return nil, fmt.Errorf("decode field %s: %w", field, err)
		}
		setAtPath(doc, strings.Split(field, "."), value)
	}
	return doc, nil
}

func setAtPath(doc Document, path []string, value any) {
	for len(path) > 1 {
		child, ok := doc[path[0]].(map[string]any)
		if !ok {
			child = make(map[string]any)
			doc[path[0]] = child
		}
		doc = child
		path = path[1:]
	}
	doc[path[0]] = value
}
