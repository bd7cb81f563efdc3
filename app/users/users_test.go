package users_test

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/app/users"
	"github.com/km-arc/go-inject/framework/errors"
	"github.com/km-arc/go-inject/framework/http/validation"
)

type memoryLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *memoryLogger) Log(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, message)
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	users.NewLogger(zerolog.New(&buf)).Log("hello")

	assert.Contains(t, buf.String(), `"component":"users"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.Contains(t, buf.String(), `"level":"info"`)
}

func TestRepository_SaveAssignsIDAndLogs(t *testing.T) {
	logger := &memoryLogger{}
	repo := users.NewRepository(logger)

	u, err := repo.Save(users.User{Name: "Andy", Email: "andy@example.com"})
	require.NoError(t, err)
	assert.Len(t, u.ID, 36)
	assert.False(t, u.CreatedAt.IsZero())

	require.Len(t, logger.messages, 1)
	assert.Contains(t, logger.messages[0], "Andy")
	assert.Contains(t, logger.messages[0], u.ID)
}

func TestRepository_RejectsDuplicateEmail(t *testing.T) {
	repo := users.NewRepository(&memoryLogger{})
	_, err := repo.Save(users.User{Name: "Andy", Email: "andy@example.com"})
	require.NoError(t, err)

	_, err = repo.Save(users.User{Name: "Other Andy", Email: "ANDY@example.com"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrAlreadyExists, errors.GetErrorCode(err))
	assert.Len(t, repo.All(), 1)
}

func TestRepository_FindAndAll(t *testing.T) {
	repo := users.NewRepository(&memoryLogger{})
	var ids []string
	for i := 0; i < 3; i++ {
		u, err := repo.Save(users.User{Name: fmt.Sprintf("user%d", i), Email: fmt.Sprintf("u%d@example.com", i)})
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}

	all := repo.All()
	require.Len(t, all, 3)
	for i, u := range all {
		assert.Equal(t, ids[i], u.ID, "insertion order")
	}

	found, err := repo.Find(ids[1])
	require.NoError(t, err)
	assert.Equal(t, "user1", found.Name)

	_, err = repo.Find("nope")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	repo := users.NewRepository(&memoryLogger{})
	a, err := repo.Save(users.User{Name: "a", Email: "a@example.com"})
	require.NoError(t, err)
	b, err := repo.Save(users.User{Name: "b", Email: "b@example.com"})
	require.NoError(t, err)

	_, err = repo.Update(a.ID, "a", "B@example.com")
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists), "email owned by another user")

	updated, err := repo.Update(a.ID, "alice", "A@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Name)
	assert.Equal(t, a.CreatedAt, updated.CreatedAt)

	require.NoError(t, repo.Delete(a.ID))
	assert.Equal(t, []users.User{b}, repo.All())
	assert.True(t, errors.IsErrorCode(repo.Delete(a.ID), errors.ErrNotFound))

	_, err = repo.Update(a.ID, "x", "x@example.com")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	_, err = repo.Save(users.User{Name: "again", Email: "a@example.com"})
	assert.NoError(t, err, "deleted email is free")
}

func TestRepository_ConcurrentSaves(t *testing.T) {
	repo := users.NewRepository(&memoryLogger{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Save(users.User{Name: "n", Email: fmt.Sprintf("c%d@example.com", i)})
		}()
	}
	wg.Wait()
	assert.Len(t, repo.All(), 50)
}

func TestService_RegisterUser(t *testing.T) {
	svc := users.NewService(users.NewRepository(&memoryLogger{}))

	u, err := svc.RegisterUser(users.Registration{Name: "  Andy ", Email: "andy@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Andy", u.Name)

	assert.Equal(t, []users.User{u}, svc.ListUsers())

	found, err := svc.FindUser(u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, found)
}

func TestService_RegisterUserValidates(t *testing.T) {
	svc := users.NewService(users.NewRepository(&memoryLogger{}))

	_, err := svc.RegisterUser(users.Registration{Name: "A", Email: "not-an-email"})
	var bag *validation.Errors
	require.True(t, stderrors.As(err, &bag), "got %v", err)
	assert.NotEmpty(t, bag.First("name"))
	assert.NotEmpty(t, bag.First("email"))
	assert.Empty(t, svc.ListUsers())
}
