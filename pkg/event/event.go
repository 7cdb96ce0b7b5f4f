// pkg/event/event.go
package event

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Type represents the type of event
type Type string

// Session event types
const (
	AssetsLoaded     Type = "assets_loaded"
	AssetLoadFailed  Type = "asset_load_failed"
	MeshSkipped      Type = "mesh_skipped"
	VehicleReset     Type = "vehicle_reset"
	TelemetryUpdated Type = "telemetry_updated"
	SessionStarted   Type = "session_started"
	SessionStopped   Type = "session_stopped"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it from the bus.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type registeredHandler struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]registeredHandler
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]registeredHandler),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registeredHandler{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Cancel: func() { b.Unsubscribe(eventType, id) },
	}
}

// Unsubscribe removes the handler registered under id. Unknown ids are ignored.
func (b *Bus) Unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.handlers[eventType]
	for i, h := range handlers {
		if h.id == id {
			b.handlers[eventType] = append(handlers[:i:i], handlers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]registeredHandler(nil), b.handlers[event.GetType()]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h.handler(event)
	}
}

// ResetEvent is published when the vehicle is returned to its spawn pose.
type ResetEvent struct {
	BaseEvent
	FellFrom mgl64.Vec3
	Spawn    mgl64.Vec3
}

// NewResetEvent creates a new vehicle reset event
func NewResetEvent(source interface{}, fellFrom, spawn mgl64.Vec3) *ResetEvent {
	return &ResetEvent{
		BaseEvent: BaseEvent{EventType: VehicleReset, Source: source},
		FellFrom:  fellFrom,
		Spawn:     spawn,
	}
}

// TelemetryEvent carries the per-frame readout shown by the speedometer.
type TelemetryEvent struct {
	BaseEvent
	Frame    uint64
	SpeedKMH float64
	Position mgl64.Vec3
	Heading  float64
}

// NewTelemetryEvent creates a new telemetry event
func NewTelemetryEvent(source interface{}, frame uint64, speedKMH float64, position mgl64.Vec3, heading float64) *TelemetryEvent {
	return &TelemetryEvent{
		BaseEvent: BaseEvent{EventType: TelemetryUpdated, Source: source},
		Frame:     frame,
		SpeedKMH:  speedKMH,
		Position:  position,
		Heading:   heading,
	}
}

// AssetEvent reports the outcome of loading or validating an asset.
type AssetEvent struct {
	BaseEvent
	Path string
	Name string
	Err  error
}

// NewAssetEvent creates a new asset event
func NewAssetEvent(eventType Type, source interface{}, path, name string, err error) *AssetEvent {
	return &AssetEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		Path:      path,
		Name:      name,
		Err:       err,
	}
}
