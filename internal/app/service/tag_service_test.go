package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

func TestTagService_CreateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.tag(t, "Graphs")

	_, err := f.tags.CreateTag(ctx, CreateTagRequest{TagName: "Graphs"})
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.EqualError(t, err, "tag_name already exists")

	_, err = f.tags.CreateTag(ctx, CreateTagRequest{TagName: strings.Repeat("x", 101)})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestTagService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tag, err := f.tags.CreateTag(ctx, CreateTagRequest{TagName: "BFS", Category: ptr("algorithm")})
	require.NoError(t, err)

	t.Run("empty patch returns the tag unchanged", func(t *testing.T) {
		got, err := f.tags.UpdateTag(ctx, tag.ID, model.TagPatch{})
		require.NoError(t, err)
		assert.Equal(t, tag, got)
	})

	t.Run("null clears only the named field", func(t *testing.T) {
		got, err := f.tags.UpdateTag(ctx, tag.ID, model.TagPatch{Category: model.Null[string]()})
		require.NoError(t, err)
		assert.Nil(t, got.Category)
		assert.Equal(t, "BFS", got.TagName)
	})

	t.Run("rename onto an existing name conflicts", func(t *testing.T) {
		f.tag(t, "DFS")
		_, err := f.tags.UpdateTag(ctx, tag.ID, model.TagPatch{TagName: model.Some("DFS")})
		assert.ErrorIs(t, err, common.ErrConflict)
	})

	t.Run("missing tag", func(t *testing.T) {
		_, err := f.tags.UpdateTag(ctx, 999, model.TagPatch{TagName: model.Some("x")})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestTagService_DeleteDetachesLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.user(t, "ada")
	tag := f.tag(t, "Heaps")
	p := f.problem(t, u.ID, "K largest", tag.ID)

	require.NoError(t, f.tags.DeleteTag(ctx, tag.ID))

	full, err := f.views.ProblemFull(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, full.Tags)

	assert.ErrorIs(t, f.tags.DeleteTag(ctx, tag.ID), common.ErrNotFound)
}
