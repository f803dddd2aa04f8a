package redis

import (
	"fmt"

	"github.com/mcoot/flipseven-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "flip7"

// roundCounterKey returns the Redis key holding the last assigned round ID
func roundCounterKey() string {
	return fmt.Sprintf("%s:seq:round", keyPrefix)
}

// roundKey returns the Redis key for a RoundRecord
func roundKey(id model.RoundID) string {
	return fmt.Sprintf("%s:round:%d", keyPrefix, id)
}

// roundsIndexKey returns the Redis key for the LIST of round keys in append order
func roundsIndexKey() string {
	return fmt.Sprintf("%s:idx:rounds", keyPrefix)
}

// roundsForGameIndexKey returns the Redis key for the ZSET of a game's round
// keys, scored by round ID
func roundsForGameIndexKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:rounds_for_game:%s", keyPrefix, gameID)
}

// roundGamesIndexKey returns the Redis key for the SET of game IDs that have rounds
func roundGamesIndexKey() string {
	return fmt.Sprintf("%s:idx:round_games", keyPrefix)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesIndexKey returns the Redis key for the ZSET of game IDs scored by creation time
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}
