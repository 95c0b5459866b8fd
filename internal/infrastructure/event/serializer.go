package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
)

// Serializer handles JSON serialization of domain events. Deserialization
// needs the concrete Go type, so every event type is registered up front.
type Serializer struct {
	mu       sync.RWMutex
	registry map[string]reflect.Type
}

// NewSerializer creates a serializer with every known event type registered
func NewSerializer() *Serializer {
	s := &Serializer{registry: make(map[string]reflect.Type)}

	s.Register(tenancy.EventTypeAccountCreated, &tenancy.AccountCreatedEvent{})
	s.Register(tenancy.EventTypeEntityCreated, &tenancy.EntityCreatedEvent{})
	s.Register(tenancy.EventTypeEntityStatusChanged, &tenancy.EntityStatusChangedEvent{})
	s.Register(tenancy.EventTypeEntityModulesChanged, &tenancy.EntityModulesChangedEvent{})
	s.Register(tenancy.EventTypeUserCreated, &tenancy.UserCreatedEvent{})

	return s
}

// Register registers an event type for deserialization. The eventType must
// match what EventType() returns on the event.
func (s *Serializer) Register(eventType string, eventInstance shared.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := reflect.TypeOf(eventInstance)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.registry[eventType] = t
}

// Serialize serializes a domain event to JSON bytes
func (s *Serializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize reconstructs a domain event from JSON bytes
func (s *Serializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.registry[eventType]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	eventPtr := reflect.New(t).Interface()
	if err := json.Unmarshal(data, eventPtr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	event, ok := eventPtr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("deserialized %s does not implement DomainEvent", eventType)
	}
	return event, nil
}

// IsRegistered reports whether an event type is known to the serializer
func (s *Serializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registry[eventType]
	return ok
}
