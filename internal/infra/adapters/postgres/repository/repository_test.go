package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/RoomMeet/internal/domain/input"
	"github.com/qrave1/RoomMeet/internal/domain/models"
	"github.com/qrave1/RoomMeet/internal/infra/adapters/postgres"
	"github.com/qrave1/RoomMeet/internal/infra/adapters/postgres/migrations"
)

// Тесты работают с настоящей базой: TEST_POSTGRES_URL указывает на пустую БД.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv("TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("TEST_POSTGRES_URL is not set")
	}

	ctx := context.Background()

	db, err := postgres.NewPostgres(ctx, url)
	require.NoError(t, err)

	goose.SetBaseFS(migrations.MigrationsFS)
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.UpContext(ctx, db.DB, "."))

	t.Cleanup(func() {
		db.MustExec("TRUNCATE call_members, calls, users CASCADE")
		db.Close()
	})

	return db
}

func createUser(t *testing.T, repo UserRepository, name string) *models.User {
	t.Helper()

	user := models.NewUser()
	user.Username = name + "-" + uuid.NewString()[:8]
	user.Password = "hash"

	require.NoError(t, repo.CreateUser(context.Background(), user))

	return user
}

func TestUserRepo(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	user := createUser(t, repo, "alice")

	got, err := repo.GetUserByUsername(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	dup := models.NewUser()
	dup.Username = user.Username
	dup.Password = "x"
	assert.ErrorIs(t, repo.CreateUser(ctx, dup), ErrUsernameTaken)

	_, err = repo.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCallRepo_Lifecycle(t *testing.T) {
	db := testDB(t)
	users := NewUserRepo(db)
	calls := NewCallRepo(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	startsAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	call, err := models.NewCall(&input.GetOrCreateCallInput{
		Type:      "default",
		ID:        uuid.NewString(),
		CreatorID: alice.ID,
		StartsAt:  &startsAt,
		Custom:    map[string]any{"description": "Planning"},
	})
	require.NoError(t, err)

	stored, created, err := calls.GetOrCreate(ctx, call)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Planning", stored.Description)

	again, created, err := calls.GetOrCreate(ctx, call)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, stored.CreatedAt, again.CreatedAt)

	require.NoError(t, calls.UpsertMembers(ctx, call.Type, call.ID, []uuid.UUID{alice.ID}))
	require.NoError(t, calls.UpsertMembers(ctx, call.Type, call.ID, []uuid.UUID{alice.ID, bob.ID}))

	members, err := calls.ListMembers(ctx, call.Type, call.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	err = calls.UpsertMembers(ctx, call.Type, call.ID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrUserNotFound)

	upcoming, err := calls.ListUpcoming(ctx, bob.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, call.ID, upcoming[0].ID)

	require.NoError(t, calls.MarkEnded(ctx, call.Type, call.ID, time.Now()))

	ended, err := calls.GetByID(ctx, call.Type, call.ID)
	require.NoError(t, err)
	assert.True(t, ended.Ended())

	upcoming, err = calls.ListUpcoming(ctx, bob.ID, time.Now())
	require.NoError(t, err)
	assert.Empty(t, upcoming)

	_, err = calls.GetByID(ctx, "default", "missing")
	assert.ErrorIs(t, err, ErrCallNotFound)
}
