package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

func TestCreateUser_DuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.CreateUser(ctx, CreateUserRequest{Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = f.users.CreateUser(ctx, CreateUserRequest{Username: "ada2", Email: "ada@example.com"})
	require.ErrorIs(t, err, common.ErrConflict)
	assert.Contains(t, err.Error(), "email")
}

func TestCreateUser_InvalidEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.CreateUser(context.Background(), CreateUserRequest{Username: "ada", Email: "nope"})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.users.CreateUser(ctx, CreateUserRequest{Username: "ada", Email: "ada@example.com", FirstName: ptr("Ada")})
	require.NoError(t, err)

	t.Run("empty patch returns the user unchanged", func(t *testing.T) {
		got, err := f.users.UpdateUser(ctx, u.ID, model.UserPatch{})
		require.NoError(t, err)
		assert.Equal(t, u, got)
	})

	t.Run("null clears a nullable field only", func(t *testing.T) {
		got, err := f.users.UpdateUser(ctx, u.ID, model.UserPatch{FirstName: model.Null[string]()})
		require.NoError(t, err)
		assert.Nil(t, got.FirstName)
		assert.Equal(t, "ada", got.Username)
		assert.Equal(t, "ada@example.com", got.Email)
	})

	t.Run("null username is rejected", func(t *testing.T) {
		_, err := f.users.UpdateUser(ctx, u.ID, model.UserPatch{Username: model.Null[string]()})
		assert.ErrorIs(t, err, common.ErrInvalidArgument)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := f.users.UpdateUser(ctx, 999, model.UserPatch{Username: model.Some("x")})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestDeleteUser_CascadesOwnedRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada")
	p := f.problem(t, u.ID, "leak")
	r := f.resource(t, u.ID, "https://example.com")

	require.NoError(t, f.users.DeleteUser(ctx, u.ID))

	_, err := f.views.ProblemWithAuthor(ctx, p.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = f.views.ResourceDetail(ctx, r.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, f.users.DeleteUser(ctx, u.ID), common.ErrNotFound)
}

func TestListUserProblemsAndResources(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada")
	other := f.user(t, "bob")
	first := f.problem(t, u.ID, "first")
	second := f.problem(t, u.ID, "second")
	f.problem(t, other.ID, "not mine")
	f.resource(t, u.ID, "https://a.example.com")

	problems, err := f.users.ListProblems(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, problems, 2)
	assert.Equal(t, second.ID, problems[0].ID)
	assert.Equal(t, first.ID, problems[1].ID)

	resources, err := f.users.ListResources(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, resources, 1)

	_, err = f.users.ListProblems(ctx, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = f.users.ListResources(ctx, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
