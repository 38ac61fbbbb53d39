package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"boardshare/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRepo opens a per-test in-memory database so tests cannot interfere
// with each other.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))
	return NewRepo(conn)
}

type fixture struct {
	owner     *models.Account
	requester *models.Account
	game      *models.Game
	instance  *models.GameInstance
}

func newFixture(t *testing.T, r *Repo) fixture {
	t.Helper()
	ctx := context.Background()

	owner, err := r.FindOrCreateAccount(ctx, "owner@example.com", uuid.NewString())
	require.NoError(t, err)
	requester, err := r.FindOrCreateAccount(ctx, "requester@example.com", uuid.NewString())
	require.NoError(t, err)

	game := &models.Game{
		ID:         uuid.NewString(),
		Name:       "Terraforming Mars",
		MinPlayers: 1,
		MaxPlayers: 5,
		Category:   "strategy",
		OwnerID:    owner.ID,
	}
	require.NoError(t, r.CreateGame(ctx, game))

	instance := &models.GameInstance{
		ID:        uuid.NewString(),
		GameID:    game.ID,
		OwnerID:   owner.ID,
		Available: true,
		Condition: "good",
		Location:  "shelf B",
	}
	require.NoError(t, r.CreateGameInstance(ctx, instance))

	return fixture{owner: owner, requester: requester, game: game, instance: instance}
}

func (f fixture) requestInput(start, end time.Time) CreateBorrowRequestInput {
	return CreateBorrowRequestInput{
		RequesterID:    f.requester.ID,
		GameID:         f.game.ID,
		GameInstanceID: f.instance.ID,
		StartDate:      start,
		EndDate:        end,
	}
}

func (f fixture) actor() Actor {
	return Actor{ID: f.owner.ID, Username: f.owner.Username}
}

// day returns a UTC instant n days from now, truncated to the second so
// round-trips through the database compare cleanly.
func day(n int) time.Time {
	return time.Now().UTC().Truncate(time.Second).Add(time.Duration(n) * 24 * time.Hour)
}

func instanceAvailable(t *testing.T, r *Repo, id string) bool {
	t.Helper()
	available, err := r.IsInstanceAvailable(context.Background(), id)
	require.NoError(t, err)
	return available
}
