package ipc

import "github.com/nstehr/ringfall/model"

// These constants must stay in sync with the game client's message types.
const (
	TypeHello     = "hello"
	TypeAck       = "ack"
	TypeGameState = "game_state"
	TypeFinish    = "finish"
)

// HelloMessage opens a game. The ruleset is fixed for the whole game.
type HelloMessage struct {
	Player    string          `json:"player"`
	Constants model.Constants `json:"constants"`
}

type AckMessage struct {
	Status string `json:"status"`
}
