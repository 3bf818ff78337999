package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

func TestCreateSolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.problem(t, f.user(t, "ada").ID, "slow query")

	t.Run("defaults version to 1", func(t *testing.T) {
		s, err := f.solutions.CreateSolution(ctx, p.ID, CreateSolutionRequest{CodeSnippet: "CREATE INDEX"})
		require.NoError(t, err)
		assert.Equal(t, 1, s.VersionNumber)
		assert.Equal(t, p.ID, s.ProblemID)
	})

	t.Run("body problem id must match path", func(t *testing.T) {
		_, err := f.solutions.CreateSolution(ctx, p.ID, CreateSolutionRequest{ProblemID: ptr(p.ID + 1), CodeSnippet: "x"})
		assert.ErrorIs(t, err, common.ErrInvalidArgument)
	})

	t.Run("matching body problem id is accepted", func(t *testing.T) {
		_, err := f.solutions.CreateSolution(ctx, p.ID, CreateSolutionRequest{ProblemID: ptr(p.ID), CodeSnippet: "x"})
		assert.NoError(t, err)
	})

	t.Run("missing problem", func(t *testing.T) {
		_, err := f.solutions.CreateSolution(ctx, 999, CreateSolutionRequest{CodeSnippet: "x"})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("missing parent", func(t *testing.T) {
		_, err := f.solutions.CreateSolution(ctx, p.ID, CreateSolutionRequest{CodeSnippet: "x", ParentSolutionID: ptr(int64(999))})
		require.ErrorIs(t, err, common.ErrNotFound)
		assert.Contains(t, err.Error(), "parent solution 999")
	})

	t.Run("success rate out of range", func(t *testing.T) {
		_, err := f.solutions.CreateSolution(ctx, p.ID, CreateSolutionRequest{CodeSnippet: "x", SuccessRate: ptr(100.5)})
		assert.ErrorIs(t, err, common.ErrInvalidArgument)
	})

	t.Run("version below 1", func(t *testing.T) {
		_, err := f.solutions.CreateSolution(ctx, p.ID, CreateSolutionRequest{CodeSnippet: "x", VersionNumber: ptr(0)})
		assert.ErrorIs(t, err, common.ErrInvalidArgument)
	})
}

func TestUpdateSolution_RejectsSelfParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.problem(t, f.user(t, "ada").ID, "p")
	s := f.solution(t, p.ID, "a")

	_, err := f.solutions.UpdateSolution(ctx, s.ID, model.SolutionPatch{ParentSolutionID: model.Some(s.ID)})
	require.ErrorIs(t, err, common.ErrInvalidArgument)

	got, err := f.solutions.GetSolution(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentSolutionID)
}

func TestUpdateSolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ada")
	p := f.problem(t, u.ID, "p")
	q := f.problem(t, u.ID, "q")
	parent := f.solution(t, p.ID, "a")
	s, err := f.solutions.CreateSolution(ctx, p.ID, CreateSolutionRequest{CodeSnippet: "b", Explanation: ptr("why")})
	require.NoError(t, err)

	got, err := f.solutions.UpdateSolution(ctx, s.ID, model.SolutionPatch{
		ParentSolutionID: model.Some(parent.ID),
		VersionNumber:    model.Some(2),
	})
	require.NoError(t, err)
	assert.Equal(t, parent.ID, *got.ParentSolutionID)
	assert.Equal(t, 2, got.VersionNumber)
	assert.Equal(t, "why", *got.Explanation)

	moved, err := f.solutions.UpdateSolution(ctx, s.ID, model.SolutionPatch{ProblemID: model.Some(q.ID)})
	require.NoError(t, err)
	assert.Equal(t, q.ID, moved.ProblemID)

	_, err = f.solutions.UpdateSolution(ctx, s.ID, model.SolutionPatch{ProblemID: model.Some(int64(999))})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = f.solutions.UpdateSolution(ctx, s.ID, model.SolutionPatch{CodeSnippet: model.Null[string]()})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = f.solutions.UpdateSolution(ctx, s.ID, model.SolutionPatch{VersionNumber: model.Some(0)})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	detached, err := f.solutions.UpdateSolution(ctx, s.ID, model.SolutionPatch{ParentSolutionID: model.Null[int64]()})
	require.NoError(t, err)
	assert.Nil(t, detached.ParentSolutionID)
}

func TestGetSolution_DetailAndChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.problem(t, f.user(t, "ada").ID, "p")
	root := f.solution(t, p.ID, "root")
	var children []*model.Solution
	for _, code := range []string{"c1", "c2"} {
		c, err := f.solutions.CreateSolution(ctx, p.ID, CreateSolutionRequest{CodeSnippet: code, ParentSolutionID: ptr(root.ID)})
		require.NoError(t, err)
		children = append(children, c)
	}

	detail, err := f.solutions.GetSolution(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.ChildrenCount)
	assert.Nil(t, detail.ParentSolution)

	childDetail, err := f.solutions.GetSolution(ctx, children[0].ID)
	require.NoError(t, err)
	require.NotNil(t, childDetail.ParentSolution)
	assert.Equal(t, root.ID, childDetail.ParentSolution.ID)
	assert.Zero(t, childDetail.ChildrenCount)

	got, err := f.solutions.ListChildren(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, children[1].ID, got[0].ID)

	_, err = f.solutions.ListChildren(ctx, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = f.solutions.GetSolution(ctx, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListByProblem_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.problem(t, f.user(t, "ada").ID, "p")
	first := f.solution(t, p.ID, "a")
	second := f.solution(t, p.ID, "b")

	got, err := f.solutions.ListByProblem(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)

	_, err = f.solutions.ListByProblem(ctx, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteSolution_KeepsChildren(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.problem(t, f.user(t, "ada").ID, "p")
	root := f.solution(t, p.ID, "root")
	child, err := f.solutions.CreateSolution(ctx, p.ID, CreateSolutionRequest{CodeSnippet: "c", ParentSolutionID: ptr(root.ID)})
	require.NoError(t, err)

	require.NoError(t, f.solutions.DeleteSolution(ctx, root.ID))

	got, err := f.solutions.GetSolution(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentSolutionID)
	assert.Nil(t, got.ParentSolution)
}
