//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/devhive/identity-server/internal/model"
	repo "github.com/devhive/identity-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "identity_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/identity_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func strPtr(s string) *string { return &s }

func makeUser(userid, email, nickname string) model.User {
	return model.User{
		ID:           uuid.New(),
		Userid:       strPtr(userid),
		Email:        strPtr(email),
		Nickname:     nickname,
		PasswordHash: "hash",
		Roles:        []string{model.RoleUser},
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestRepositories(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	t.Run("user_crud", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		u := makeUser("crud-user", "crud@example.com", "Crud")

		saved, err := ur.Create(ctx, u)
		require.NoError(t, err)
		require.Equal(t, u.ID, saved.ID)

		byUserid, err := ur.GetByUserid(ctx, "crud-user")
		require.NoError(t, err)
		require.Equal(t, u.ID, byUserid.ID)

		byEmail, err := ur.GetByEmail(ctx, "crud@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)

		byNickname, err := ur.GetByNickname(ctx, "Crud")
		require.NoError(t, err)
		require.Equal(t, u.ID, byNickname.ID)

		updated, err := ur.Save(ctx, saved.WithNickname("CrudRenamed"))
		require.NoError(t, err)
		require.Equal(t, "CrudRenamed", updated.Nickname)

		_, err = ur.GetByUserid(ctx, "no-such-user")
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("user_unique_conflicts", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)
		_, err := ur.Create(ctx, makeUser("unique-one", "unique-one@example.com", "UniqueOne"))
		require.NoError(t, err)

		tests := []struct {
			name  string
			user  model.User
			field string
		}{
			{"userid", makeUser("unique-one", "other@example.com", "Other"), model.FieldUserid},
			{"email", makeUser("other-userid", "unique-one@example.com", "Other2"), model.FieldEmail},
			{"nickname", makeUser("third-userid", "third@example.com", "UniqueOne"), model.FieldNickname},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ur.Create(ctx, tt.user)
				field, ok := model.IsDuplicate(err)
				require.True(t, ok, "expected duplicate error, got %v", err)
				require.Equal(t, tt.field, field)
			})
		}
	})

	t.Run("deactivated_accounts_do_not_collide", func(t *testing.T) {
		ur := repo.NewUserRepository(conn)

		first, err := ur.Create(ctx, makeUser("quit-one", "quit-one@example.com", "QuitOne"))
		require.NoError(t, err)
		second, err := ur.Create(ctx, makeUser("quit-two", "quit-two@example.com", "QuitTwo"))
		require.NoError(t, err)

		// Two deactivations share NULL identity fields and the anonymized
		// nickname; the partial unique indexes must allow both.
		_, err = ur.Save(ctx, first.Deactivated("scrambled-1"))
		require.NoError(t, err)
		_, err = ur.Save(ctx, second.Deactivated("scrambled-2"))
		require.NoError(t, err)

		// The freed handle is available again.
		_, err = ur.Create(ctx, makeUser("quit-one", "quit-one@example.com", "QuitOneReborn"))
		require.NoError(t, err)
	})

	t.Run("document_crud", func(t *testing.T) {
		dr := repo.NewDocumentRepository(conn)
		doc := model.Document{
			ID:        uuid.New(),
			InputName: "avatar.png",
			Path:      "profiles/abc.png",
			URL:       "http://files.local/bucket/profiles/abc.png",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		saved, err := dr.Create(ctx, doc)
		require.NoError(t, err)
		require.Equal(t, doc.ID, saved.ID)

		fetched, err := dr.GetByID(ctx, doc.ID)
		require.NoError(t, err)
		require.Equal(t, "avatar.png", fetched.InputName)

		fetched.Path = "profiles/def.png"
		updated, err := dr.Save(ctx, fetched)
		require.NoError(t, err)
		require.Equal(t, "profiles/def.png", updated.Path)

		_, err = dr.GetByID(ctx, uuid.New())
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("verification_token_lifecycle", func(t *testing.T) {
		vr := repo.NewVerificationTokenRepository(conn)

		err := vr.Create(ctx, model.VerificationToken{
			Token:     "fresh-token",
			Email:     "reset@example.com",
			ExpiresAt: time.Now().Add(model.VerificationTokenTTL),
		})
		require.NoError(t, err)

		exists, err := vr.Exists(ctx, "fresh-token")
		require.NoError(t, err)
		require.True(t, exists)

		ok, err := vr.Consume(ctx, "fresh-token")
		require.NoError(t, err)
		require.True(t, ok)

		// Single use: the second redemption fails.
		ok, err = vr.Consume(ctx, "fresh-token")
		require.NoError(t, err)
		require.False(t, ok)

		exists, err = vr.Exists(ctx, "fresh-token")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("verification_token_expired", func(t *testing.T) {
		vr := repo.NewVerificationTokenRepository(conn)

		err := vr.Create(ctx, model.VerificationToken{
			Token:     "expired-token",
			Email:     "late@example.com",
			ExpiresAt: time.Now().Add(-time.Minute),
		})
		require.NoError(t, err)

		ok, err := vr.Consume(ctx, "expired-token")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("verification_token_unknown", func(t *testing.T) {
		vr := repo.NewVerificationTokenRepository(conn)

		ok, err := vr.Consume(ctx, "never-issued")
		require.NoError(t, err)
		require.False(t, ok)
	})
}
