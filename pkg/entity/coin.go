// pkg/entity/coin.go
package entity

import (
	"github.com/opd-ai/go-tankwars/pkg/collision"
	"github.com/opd-ai/go-tankwars/pkg/physics"
)

// DefaultCoinRadius is the radius of a coin's triangular hitbox
const DefaultCoinRadius = 24

// Coin is a pickup awarded to the first robot that touches it
type Coin struct {
	Body
}

// NewCoin creates a coin at position
func NewCoin(position physics.Vector2D, radius float64) *Coin {
	return &Coin{Body: newBody(position, 0, physics.RegularPolygon(3, radius))}
}

// Kind returns KindCoin
func (c *Coin) Kind() Kind {
	return KindCoin
}

// ReactsToCollisions returns false: coins are never pushed around
func (c *Coin) ReactsToCollisions() bool {
	return false
}

// OnCollide awards the coin to a living robot and removes it
func (c *Coin) OnCollide(other collision.Collider, _ physics.Vector2D) {
	if !c.Alive() {
		return
	}
	robot, ok := other.(*Robot)
	if !ok || !robot.Alive() {
		return
	}
	robot.AddCoin()
	c.Destroy()
}
