package ipc

import "github.com/nstehr/ringfall/model"

// TypeOrder is the reply to every game state.
const TypeOrder = "order"

// OrderMessage carries the orders for one tick.
type OrderMessage struct {
	Tick  int         `json:"tick"`
	Order model.Order `json:"order"`
}
