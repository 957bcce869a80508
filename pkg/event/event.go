// pkg/event/event.go

// Package event is an in-process publish/subscribe bus for match events
package event

import (
	"sync"

	"github.com/opd-ai/go-tankwars/pkg/physics"
)

// Type represents the type of event
type Type string

// Match event types
const (
	MatchStarted    Type = "match_started"
	MatchEnded      Type = "match_ended"
	RobotSpawned    Type = "robot_spawned"
	RobotDestroyed  Type = "robot_destroyed"
	BulletFired     Type = "bullet_fired"
	BulletsClashed  Type = "bullets_clashed"
	EntityCollision Type = "entity_collision"
	CoinSpawned     Type = "coin_spawned"
	CoinCollected   Type = "coin_collected"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
	// GetTime is the simulation time at which the event happened
	GetTime() float64
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
	Time      float64
}

func (e *BaseEvent) GetType() Type {
	return e.EventType
}

func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

func (e *BaseEvent) GetTime() float64 {
	return e.Time
}

// Handler is a function that handles events
type Handler func(Event)

type registration struct {
	id      uint64
	handler Handler
}

// Subscription identifies a registered handler
type Subscription struct {
	ID     uint64
	Cancel func()
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine in subscription order.
type Bus struct {
	handlers map[Type][]registration
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]registration),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registration{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Cancel: func() { b.Unsubscribe(eventType, id) },
	}
}

// Unsubscribe removes the handler registered under id
func (b *Bus) Unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.handlers[eventType]
	for i, r := range handlers {
		if r.id == id {
			// copy so a Publish iterating the old slice is unaffected
			rest := make([]registration, 0, len(handlers)-1)
			rest = append(rest, handlers[:i]...)
			b.handlers[eventType] = append(rest, handlers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, r := range handlers {
		r.handler(event)
	}
}

// MatchEvent marks the start or end of a match
type MatchEvent struct {
	BaseEvent
	MatchID string
	Robots  int
}

// NewMatchEvent creates a new match event
func NewMatchEvent(eventType Type, source interface{}, time float64, matchID string, robots int) *MatchEvent {
	return &MatchEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source, Time: time},
		MatchID:   matchID,
		Robots:    robots,
	}
}

// RobotEvent contains information about robot-related events
type RobotEvent struct {
	BaseEvent
	RobotID  uint64
	Name     string
	Position physics.Vector2D
}

// NewRobotEvent creates a new robot event
func NewRobotEvent(eventType Type, source interface{}, time float64, robotID uint64, name string, position physics.Vector2D) *RobotEvent {
	return &RobotEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source, Time: time},
		RobotID:   robotID,
		Name:      name,
		Position:  position,
	}
}

// BulletEvent is published when a robot fires
type BulletEvent struct {
	BaseEvent
	BulletID  uint64
	ShooterID uint64
	Position  physics.Vector2D
}

// NewBulletEvent creates a new bullet event
func NewBulletEvent(source interface{}, time float64, bulletID, shooterID uint64, position physics.Vector2D) *BulletEvent {
	return &BulletEvent{
		BaseEvent: BaseEvent{EventType: BulletFired, Source: source, Time: time},
		BulletID:  bulletID,
		ShooterID: shooterID,
		Position:  position,
	}
}

// ClashEvent is published when bullets of different shooters annihilate
type ClashEvent struct {
	BaseEvent
	Bullets  []uint64
	Position physics.Vector2D
}

// NewClashEvent creates a new clash event
func NewClashEvent(source interface{}, time float64, bullets []uint64, position physics.Vector2D) *ClashEvent {
	return &ClashEvent{
		BaseEvent: BaseEvent{EventType: BulletsClashed, Source: source, Time: time},
		Bullets:   bullets,
		Position:  position,
	}
}

// CollisionEvent contains information about entity collisions
type CollisionEvent struct {
	BaseEvent
	EntityA     uint64
	EntityB     uint64
	Translation physics.Vector2D
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, time float64, entityA, entityB uint64, translation physics.Vector2D) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent:   BaseEvent{EventType: EntityCollision, Source: source, Time: time},
		EntityA:     entityA,
		EntityB:     entityB,
		Translation: translation,
	}
}

// CoinEvent is published when a coin appears or is picked up. RobotID is
// zero for spawns.
type CoinEvent struct {
	BaseEvent
	CoinID   uint64
	RobotID  uint64
	Position physics.Vector2D
}

// NewCoinEvent creates a new coin event
func NewCoinEvent(eventType Type, source interface{}, time float64, coinID, robotID uint64, position physics.Vector2D) *CoinEvent {
	return &CoinEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source, Time: time},
		CoinID:    coinID,
		RobotID:   robotID,
		Position:  position,
	}
}
