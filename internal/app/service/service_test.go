package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"problem_tracker/internal/domain/model"
	"problem_tracker/internal/domain/repository/memstore"
)

type fixture struct {
	store     *memstore.Store
	users     *UserService
	problems  *ProblemService
	solutions *SolutionService
	resources *ResourceService
	tags      *TagService
	links     *LinkService
	views     *ViewService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	svc := NewServices(Repositories{
		Users:     store.Users(),
		Problems:  store.Problems(),
		Solutions: store.Solutions(),
		Resources: store.Resources(),
		Tags:      store.Tags(),
		Links:     store.Links(),
		Usage:     store.Usage(),
	}, store, zap.NewNop())

	return &fixture{
		store:     store,
		users:     svc.Users,
		problems:  svc.Problems,
		solutions: svc.Solutions,
		resources: svc.Resources,
		tags:      svc.Tags,
		links:     svc.Links,
		views:     svc.Views,
	}
}

func (f *fixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), CreateUserRequest{Username: name, Email: name + "@example.com"})
	require.NoError(t, err)
	return u
}

func (f *fixture) problem(t *testing.T, userID int64, title string, tags ...int64) *model.Problem {
	t.Helper()
	p, err := f.problems.CreateProblem(context.Background(), CreateProblemRequest{UserID: userID, Title: title, Tags: tags})
	require.NoError(t, err)
	return p
}

func (f *fixture) solution(t *testing.T, problemID int64, code string) *model.Solution {
	t.Helper()
	s, err := f.solutions.CreateSolution(context.Background(), problemID, CreateSolutionRequest{CodeSnippet: code})
	require.NoError(t, err)
	return s
}

func (f *fixture) resource(t *testing.T, userID int64, url string) *model.Resource {
	t.Helper()
	r, err := f.resources.CreateResource(context.Background(), CreateResourceRequest{UserID: userID, URL: url})
	require.NoError(t, err)
	return r
}

func (f *fixture) tag(t *testing.T, name string) *model.Tag {
	t.Helper()
	tag, err := f.tags.CreateTag(context.Background(), CreateTagRequest{TagName: name})
	require.NoError(t, err)
	return tag
}

func ptr[T any](v T) *T { return &v }
