package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"problem_tracker/internal/common"
)

func TestAttachResourceToProblem_Upserts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada")
	p := f.problem(t, u.ID, "p")
	r := f.resource(t, u.ID, "https://example.com")

	req := AttachProblemResourceRequest{ResourceID: r.ID, RelevanceScore: ptr(0.5)}
	_, err := f.links.AttachResourceToProblem(ctx, p.ID, req)
	require.NoError(t, err)
	full, err := f.links.AttachResourceToProblem(ctx, p.ID, req)
	require.NoError(t, err)

	rows := f.store.ProblemResourceRows()
	require.Len(t, rows, 1)
	assert.Equal(t, 0.5, *rows[0].RelevanceScore)
	require.Len(t, full.LinkedResources, 1)
	assert.Equal(t, r.ID, full.LinkedResources[0].Resource.ID)

	full, err = f.links.AttachResourceToProblem(ctx, p.ID, AttachProblemResourceRequest{
		ResourceID:       r.ID,
		RelevanceScore:   ptr(0.9),
		ContributionType: ptr("reference"),
	})
	require.NoError(t, err)
	rows = f.store.ProblemResourceRows()
	require.Len(t, rows, 1)
	assert.Equal(t, 0.9, *full.LinkedResources[0].RelevanceScore)
	assert.Equal(t, "reference", *full.LinkedResources[0].ContributionType)
}

func TestAttachResourceToProblem_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada")
	p := f.problem(t, u.ID, "p")
	r := f.resource(t, u.ID, "https://example.com")

	_, err := f.links.AttachResourceToProblem(ctx, 999, AttachProblemResourceRequest{ResourceID: r.ID})
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, err.Error(), "problem 999")

	_, err = f.links.AttachResourceToProblem(ctx, p.ID, AttachProblemResourceRequest{ResourceID: 999})
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Contains(t, err.Error(), "resource 999")

	_, err = f.links.AttachResourceToProblem(ctx, p.ID, AttachProblemResourceRequest{ResourceID: r.ID, RelevanceScore: ptr(1.5)})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
	assert.Empty(t, f.store.ProblemResourceRows())
}

func TestDetachResourceFromProblem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada")
	p := f.problem(t, u.ID, "p")
	r := f.resource(t, u.ID, "https://example.com")

	_, err := f.links.DetachResourceFromProblem(ctx, p.ID, r.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = f.links.AttachResourceToProblem(ctx, p.ID, AttachProblemResourceRequest{ResourceID: r.ID})
	require.NoError(t, err)
	full, err := f.links.DetachResourceFromProblem(ctx, p.ID, r.ID)
	require.NoError(t, err)
	assert.Empty(t, full.LinkedResources)
}

func TestProblemTagLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.problem(t, f.user(t, "ada").ID, "p")
	tag := f.tag(t, "dp")

	got, err := f.links.AttachTagToProblem(ctx, p.ID, AttachTagRequest{TagID: tag.ID})
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "ada", got.Author.Username)

	_, err = f.links.AttachTagToProblem(ctx, p.ID, AttachTagRequest{TagID: tag.ID})
	require.NoError(t, err)
	full, err := f.views.ProblemFull(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, full.Tags, 1)

	_, err = f.links.AttachTagToProblem(ctx, p.ID, AttachTagRequest{TagID: 999})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = f.links.DetachTagFromProblem(ctx, p.ID, tag.ID)
	require.NoError(t, err)
	_, err = f.links.DetachTagFromProblem(ctx, p.ID, tag.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestResourceTagLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.resource(t, f.user(t, "ada").ID, "https://example.com")
	tag := f.tag(t, "docs")

	detail, err := f.links.AttachTagToResource(ctx, r.ID, AttachResourceTagRequest{TagID: tag.ID, Confidence: ptr(0.3)})
	require.NoError(t, err)
	require.Len(t, detail.Tags, 1)

	detail, err = f.links.AttachTagToResource(ctx, r.ID, AttachResourceTagRequest{TagID: tag.ID, Confidence: ptr(0.8)})
	require.NoError(t, err)
	assert.Len(t, detail.Tags, 1)

	_, err = f.links.AttachTagToResource(ctx, r.ID, AttachResourceTagRequest{TagID: tag.ID, Confidence: ptr(2.0)})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	detail, err = f.links.DetachTagFromResource(ctx, r.ID, tag.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Tags)
	_, err = f.links.DetachTagFromResource(ctx, r.ID, tag.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSolutionResourceLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada")
	s := f.solution(t, f.problem(t, u.ID, "p").ID, "x")
	r := f.resource(t, u.ID, "https://example.com")

	got, err := f.links.AttachResourceToSolution(ctx, s.ID, AttachSolutionResourceRequest{ResourceID: r.ID})
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	detail, err := f.views.ResourceDetail(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, detail.LinkedSolutions, 1)

	_, err = f.links.AttachResourceToSolution(ctx, 999, AttachSolutionResourceRequest{ResourceID: r.ID})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = f.links.DetachResourceFromSolution(ctx, s.ID, r.ID)
	require.NoError(t, err)
	_, err = f.links.DetachResourceFromSolution(ctx, s.ID, r.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRelations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada")
	a := f.problem(t, u.ID, "a")
	b := f.problem(t, u.ID, "b")

	t.Run("self relation", func(t *testing.T) {
		_, err := f.links.CreateRelation(ctx, a.ID, CreateRelationRequest{ToProblemID: a.ID})
		assert.ErrorIs(t, err, common.ErrInvalidArgument)
	})

	t.Run("create then duplicate", func(t *testing.T) {
		rel, err := f.links.CreateRelation(ctx, a.ID, CreateRelationRequest{ToProblemID: b.ID, RelationType: ptr("duplicate"), Strength: ptr(0.7)})
		require.NoError(t, err)
		assert.Equal(t, a.ID, rel.FromProblemID)

		_, err = f.links.CreateRelation(ctx, a.ID, CreateRelationRequest{ToProblemID: b.ID})
		assert.ErrorIs(t, err, common.ErrConflict)
	})

	t.Run("reverse direction is independent", func(t *testing.T) {
		_, err := f.links.CreateRelation(ctx, b.ID, CreateRelationRequest{ToProblemID: a.ID})
		require.NoError(t, err)
	})

	t.Run("listing", func(t *testing.T) {
		out, err := f.links.RelationsFrom(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, b.ID, out[0].ToProblemID)

		in, err := f.links.RelationsTo(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, in, 1)
		assert.Equal(t, b.ID, in[0].FromProblemID)

		_, err = f.links.RelationsFrom(ctx, 999)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("strength bounds and missing target", func(t *testing.T) {
		_, err := f.links.CreateRelation(ctx, a.ID, CreateRelationRequest{ToProblemID: 999})
		assert.ErrorIs(t, err, common.ErrNotFound)

		c := f.problem(t, u.ID, "c")
		_, err = f.links.CreateRelation(ctx, a.ID, CreateRelationRequest{ToProblemID: c.ID, Strength: ptr(-0.1)})
		assert.ErrorIs(t, err, common.ErrInvalidArgument)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, f.links.DeleteRelation(ctx, a.ID, b.ID))
		assert.ErrorIs(t, f.links.DeleteRelation(ctx, a.ID, b.ID), common.ErrNotFound)
	})
}

func TestLinkRequests_RequireTargetID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada")
	p := f.problem(t, u.ID, "p")
	s := f.solution(t, p.ID, "x")
	r := f.resource(t, u.ID, "https://example.com")

	_, err := f.links.AttachTagToProblem(ctx, p.ID, AttachTagRequest{})
	require.ErrorIs(t, err, common.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "tag_id is required")

	_, err = f.links.AttachTagToResource(ctx, r.ID, AttachResourceTagRequest{TagID: -3})
	require.ErrorIs(t, err, common.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "tag_id must be > 0")

	_, err = f.links.AttachResourceToProblem(ctx, p.ID, AttachProblemResourceRequest{})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = f.links.AttachResourceToSolution(ctx, s.ID, AttachSolutionResourceRequest{})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = f.links.CreateRelation(ctx, p.ID, CreateRelationRequest{})
	require.ErrorIs(t, err, common.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "to_problem_id is required")
}
