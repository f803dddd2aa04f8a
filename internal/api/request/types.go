package request

// SimulateGameRequest is the request body for playing a bot game
type SimulateGameRequest struct {
	Players   []string `json:"players"`
	Strategy  string   `json:"strategy,omitempty"`
	Threshold int      `json:"threshold,omitempty"`
}
