// Package memstore is an in-memory implementation of every repository
// interface and of database.TxRunner, for service and handler tests.
// It mirrors the schema's uniqueness, foreign key and cascade rules and the
// orderings of the PostgreSQL queries. A failed transaction restores the
// state it started from.
package memstore

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"problem_tracker/internal/domain/model"
	"problem_tracker/internal/domain/repository"
)

type pair [2]int64

type tables struct {
	users             map[int64]model.User
	problems          map[int64]model.Problem
	solutions         map[int64]model.Solution
	resources         map[int64]model.Resource
	tags              map[int64]model.Tag
	problemTags       map[pair]model.ProblemTag
	resourceTags      map[pair]model.ResourceTag
	problemResources  map[pair]model.ProblemResource
	solutionResources map[pair]model.SolutionResource
	relations         map[pair]model.ProblemRelation
	seq               map[string]int64
}

func newTables() *tables {
	return &tables{
		users:             map[int64]model.User{},
		problems:          map[int64]model.Problem{},
		solutions:         map[int64]model.Solution{},
		resources:         map[int64]model.Resource{},
		tags:              map[int64]model.Tag{},
		problemTags:       map[pair]model.ProblemTag{},
		resourceTags:      map[pair]model.ResourceTag{},
		problemResources:  map[pair]model.ProblemResource{},
		solutionResources: map[pair]model.SolutionResource{},
		relations:         map[pair]model.ProblemRelation{},
		seq:               map[string]int64{},
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	copyMap(c.users, t.users)
	copyMap(c.problems, t.problems)
	copyMap(c.solutions, t.solutions)
	copyMap(c.resources, t.resources)
	copyMap(c.tags, t.tags)
	copyMap(c.problemTags, t.problemTags)
	copyMap(c.resourceTags, t.resourceTags)
	copyMap(c.problemResources, t.problemResources)
	copyMap(c.solutionResources, t.solutionResources)
	copyMap(c.relations, t.relations)
	copyMap(c.seq, t.seq)
	return c
}

func copyMap[K comparable, V any](dst, src map[K]V) {
	for k, v := range src {
		dst[k] = v
	}
}

// Store holds every table. Use the accessor methods to get the repositories.
type Store struct {
	txMu sync.Mutex // serializes transactions
	mu   sync.Mutex // guards everything below
	data *tables

	clock    time.Time
	failNext error
}

func New() *Store {
	return &Store{
		data:  newTables(),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// InTx runs fn with a nil *sql.Tx; repository calls made by fn go straight to
// the store. If fn fails, every change it made is discarded.
func (s *Store) InTx(ctx context.Context, _ *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// tick returns a strictly increasing timestamp, one second apart, so ordering
// by creation time is deterministic. Callers must hold mu.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// FailNext makes the next repository call return err instead of running.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// injected returns and clears the pending failure. Callers must hold mu.
func (s *Store) injected() error {
	err := s.failNext
	s.failNext = nil
	return err
}

// nextID returns the next surrogate key for table. Callers must hold mu.
func (s *Store) nextID(table string) int64 {
	s.data.seq[table]++
	return s.data.seq[table]
}

func (s *Store) Users() repository.UserRepository         { return userRepo{s} }
func (s *Store) Problems() repository.ProblemRepository   { return problemRepo{s} }
func (s *Store) Solutions() repository.SolutionRepository { return solutionRepo{s} }
func (s *Store) Resources() repository.ResourceRepository { return resourceRepo{s} }
func (s *Store) Tags() repository.TagRepository           { return tagRepo{s} }
func (s *Store) Links() repository.LinkRepository         { return linkRepo{s} }
func (s *Store) Usage() repository.UsageRanker            { return usageRanker{s} }

// ProblemResourceRows returns every problem-resource link row.
func (s *Store) ProblemResourceRows() []model.ProblemResource {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]model.ProblemResource, 0, len(s.data.problemResources))
	for _, l := range s.data.problemResources {
		rows = append(rows, l)
	}
	return rows
}
