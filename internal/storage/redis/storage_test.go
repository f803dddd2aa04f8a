package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/flipseven-go/internal/model"
	"github.com/mcoot/flipseven-go/internal/storage"
	"github.com/mcoot/flipseven-go/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini *miniredis.Miniredis
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	cfg := DefaultConfig()
	cfg.GameTTL = time.Hour

	s.NewStorage = func() storage.Storage {
		client := redis.NewClient(&redis.Options{
			Addr: s.mini.Addr(),
		})
		return NewWithClient(client, cfg)
	}
	s.Suite.SetupTest()
}

func (s *StorageSuite) TestGameTTL() {
	game := storagetest.SampleGame("game-1", time.Now().UTC())
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	ttl := s.mini.TTL(gameKey(game.ID))
	s.Equal(time.Hour, ttl)
}

func (s *StorageSuite) TestRoundsNeverExpire() {
	id, err := s.Storage.AppendRound(s.Ctx, storagetest.SampleRound("game-1", 1))
	s.Require().NoError(err)

	s.Equal(time.Duration(0), s.mini.TTL(roundKey(id)))
}

func (s *StorageSuite) TestAppendMaintainsIndexes() {
	id, err := s.Storage.AppendRound(s.Ctx, storagetest.SampleRound("game-1", 1))
	s.Require().NoError(err)

	counter, err := s.mini.Get(roundCounterKey())
	s.Require().NoError(err)
	s.Equal("1", counter)

	list, err := s.mini.List(roundsIndexKey())
	s.Require().NoError(err)
	s.Equal([]string{roundKey(id)}, list)

	members, err := s.mini.ZMembers(roundsForGameIndexKey("game-1"))
	s.Require().NoError(err)
	s.Equal([]string{roundKey(id)}, members)
}

func (s *StorageSuite) TestRoundWithoutGameSkipsGameIndex() {
	_, err := s.Storage.AppendRound(s.Ctx, storagetest.SampleRound("", 1))
	s.Require().NoError(err)

	s.False(s.mini.Exists(roundGamesIndexKey()))
}

func (s *StorageSuite) TestResetRemovesEveryHistoryKey() {
	_, err := s.Storage.AppendRound(s.Ctx, storagetest.SampleRound("game-1", 1))
	s.Require().NoError(err)

	s.Require().NoError(s.Storage.Reset(s.Ctx))

	s.False(s.mini.Exists(roundKey(1)))
	s.False(s.mini.Exists(roundsIndexKey()))
	s.False(s.mini.Exists(roundsForGameIndexKey("game-1")))
	s.False(s.mini.Exists(roundCounterKey()))
}

func (s *StorageSuite) TestCorruptRoundIsAnError() {
	id, err := s.Storage.AppendRound(s.Ctx, storagetest.SampleRound("game-1", 1))
	s.Require().NoError(err)
	s.Require().NoError(s.mini.Set(roundKey(id), "{not json"))

	_, err = s.Storage.ListRounds(s.Ctx)
	s.Error(err)
}

func (s *StorageSuite) TestDeleteGameRemovesIndexEntry() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, storagetest.SampleGame("game-1", time.Now().UTC())))
	s.Require().NoError(s.Storage.DeleteGame(s.Ctx, "game-1"))

	games, err := s.Storage.ListGames(s.Ctx)
	s.Require().NoError(err)
	s.Empty(games)
	s.False(s.mini.Exists(gameKey(model.GameID("game-1"))))
}
