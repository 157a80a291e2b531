package myredis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stickyproxy/helpers"
	"stickyproxy/interfaces"
	"stickyproxy/service"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-redis/redis/v8"
)

type bindingStore struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	logger  log.Logger
	onWrite func(op string)
	slides  sync.WaitGroup
}

// StoreOption configures the binding store.
type StoreOption func(*bindingStore)

// WithWriteHook registers fn to be called with service.BindingCreate or service.BindingDelete after Redis has
// acknowledged the write. Failed writes are not reported. Panics on nil fn.
func WithWriteHook(fn func(op string)) StoreOption {
	helpers.NilPanic(fn, "myredis.binding_store.go: write hook is required")
	return func(s *bindingStore) {
		s.onWrite = fn
	}
}

// NewBindingStore creates redis implementation of interfaces.BindingStore.
//
// Parameters:
//   - client: redis client, required
//   - prefix: prepended as is to every session id to build the key, required
//   - ttl: binding lifetime, set on creation and slid on every successful lookup
//   - timeout: upper bound of every redis round trip issued by the store
//   - logger: go-kit logger, required
//   - options: optional settings, see WithWriteHook
//
// Returns:
//   - interfaces.AsyncBindingStore: ready to use store; call Wait before closing the client
func NewBindingStore(client redis.UniversalClient, prefix string, ttl, timeout time.Duration, logger log.Logger, options ...StoreOption) interfaces.AsyncBindingStore {
	s := &bindingStore{
		client:  helpers.NilPanic(client, "myredis.binding_store.go: client is required"),
		prefix:  helpers.StrPanic(prefix, "myredis.binding_store.go: prefix is required"),
		ttl:     helpers.DurationPanic(ttl, "myredis.binding_store.go: ttl must be positive"),
		timeout: helpers.DurationPanic(timeout, "myredis.binding_store.go: timeout must be positive"),
		logger:  log.With(helpers.NilPanic(logger, "myredis.binding_store.go: logger is required"), "component", "binding_store"),
		onWrite: func(string) {},
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Create stores sessionID -> host with the configured ttl. Errors are logged and dropped.
func (s *bindingStore) Create(ctx context.Context, sessionID, host string) {
	ctx, cancel := s.detached(ctx)
	defer cancel()

	key := s.generateKey(sessionID)
	if err := s.client.Set(ctx, key, host, s.ttl).Err(); err != nil {
		level.Warn(s.logger).Log("msg", "can't create binding", "key", key, "host", host, "err", err)
		return
	}
	s.onWrite(service.BindingCreate)
	level.Debug(s.logger).Log("msg", "binding created", "sid", sessionID, "host", host)
}

// Lookup returns the host bound to sessionID and slides its expiration in background.
func (s *bindingStore) Lookup(ctx context.Context, sessionID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := s.generateKey(sessionID)
	host, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", service.NewUnknownBindingError(sessionID, err)
	}
	if err != nil {
		return "", service.NewStoreError("Redis read key error", fmt.Errorf("can't read binding (key='%s'), err: %w", key, err))
	}
	if host == "" {
		return "", service.NewUnknownBindingError(sessionID, nil)
	}

	s.slide(ctx, key)
	return host, nil
}

// Delete removes the binding of sessionID. Errors are logged and dropped.
func (s *bindingStore) Delete(ctx context.Context, sessionID string) {
	ctx, cancel := s.detached(ctx)
	defer cancel()

	key := s.generateKey(sessionID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		level.Warn(s.logger).Log("msg", "can't delete binding", "key", key, "err", err)
		return
	}
	s.onWrite(service.BindingDelete)
	level.Debug(s.logger).Log("msg", "binding deleted", "sid", sessionID)
}

// Wait blocks until every pending expiration slide has finished.
func (s *bindingStore) Wait() {
	s.slides.Wait()
}

func (s *bindingStore) slide(ctx context.Context, key string) {
	s.slides.Add(1)
	go func() {
		defer s.slides.Done()

		ctx, cancel := s.detached(ctx)
		defer cancel()

		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			level.Warn(s.logger).Log("msg", "can't refresh binding expiration", "key", key, "err", err)
		}
	}()
}

// detached keeps the values of ctx but not its cancellation, so a client hanging up never aborts a write.
func (s *bindingStore) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

func (s *bindingStore) generateKey(sessionID string) string {
	return s.prefix + sessionID
}
