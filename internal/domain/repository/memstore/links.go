package memstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

type linkRepo struct{ s *Store }

func (s *Store) requireRows(problemID, solutionID, resourceID, tagID int64) error {
	if problemID != 0 {
		if _, ok := s.data.problems[problemID]; !ok {
			return missing("problem")
		}
	}
	if solutionID != 0 {
		if _, ok := s.data.solutions[solutionID]; !ok {
			return missing("solution")
		}
	}
	if resourceID != 0 {
		if _, ok := s.data.resources[resourceID]; !ok {
			return missing("resource")
		}
	}
	if tagID != 0 {
		if _, ok := s.data.tags[tagID]; !ok {
			return missing("tag")
		}
	}
	return nil
}

func (r linkRepo) AttachProblemTag(_ context.Context, _ *sql.Tx, l model.ProblemTag) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if err := s.requireRows(l.ProblemID, 0, 0, l.TagID); err != nil {
		return err
	}
	s.data.problemTags[pair{l.ProblemID, l.TagID}] = l
	return nil
}

func (r linkRepo) DetachProblemTag(_ context.Context, _ *sql.Tx, problemID, tagID int64) error {
	return r.detach(func(t *tables) bool {
		key := pair{problemID, tagID}
		_, ok := t.problemTags[key]
		delete(t.problemTags, key)
		return ok
	}, fmt.Errorf("tag %d is not attached to problem %d: %w", tagID, problemID, common.ErrNotFound))
}

func (r linkRepo) UpsertResourceTag(_ context.Context, _ *sql.Tx, l model.ResourceTag) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if err := s.requireRows(0, 0, l.ResourceID, l.TagID); err != nil {
		return err
	}
	s.data.resourceTags[pair{l.ResourceID, l.TagID}] = l
	return nil
}

func (r linkRepo) DetachResourceTag(_ context.Context, _ *sql.Tx, resourceID, tagID int64) error {
	return r.detach(func(t *tables) bool {
		key := pair{resourceID, tagID}
		_, ok := t.resourceTags[key]
		delete(t.resourceTags, key)
		return ok
	}, fmt.Errorf("tag %d is not attached to resource %d: %w", tagID, resourceID, common.ErrNotFound))
}

func (r linkRepo) UpsertProblemResource(_ context.Context, _ *sql.Tx, l model.ProblemResource) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if err := s.requireRows(l.ProblemID, 0, l.ResourceID, 0); err != nil {
		return err
	}
	key := pair{l.ProblemID, l.ResourceID}
	if existing, ok := s.data.problemResources[key]; ok {
		l.AddedAt = existing.AddedAt
	} else {
		l.AddedAt = s.tick()
	}
	s.data.problemResources[key] = l
	return nil
}

func (r linkRepo) DetachProblemResource(_ context.Context, _ *sql.Tx, problemID, resourceID int64) error {
	return r.detach(func(t *tables) bool {
		key := pair{problemID, resourceID}
		_, ok := t.problemResources[key]
		delete(t.problemResources, key)
		return ok
	}, fmt.Errorf("resource %d is not attached to problem %d: %w", resourceID, problemID, common.ErrNotFound))
}

func (r linkRepo) AttachSolutionResource(_ context.Context, _ *sql.Tx, l model.SolutionResource) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if err := s.requireRows(0, l.SolutionID, l.ResourceID, 0); err != nil {
		return err
	}
	s.data.solutionResources[pair{l.SolutionID, l.ResourceID}] = l
	return nil
}

func (r linkRepo) DetachSolutionResource(_ context.Context, _ *sql.Tx, solutionID, resourceID int64) error {
	return r.detach(func(t *tables) bool {
		key := pair{solutionID, resourceID}
		_, ok := t.solutionResources[key]
		delete(t.solutionResources, key)
		return ok
	}, fmt.Errorf("resource %d is not attached to solution %d: %w", resourceID, solutionID, common.ErrNotFound))
}

func (r linkRepo) CreateRelation(_ context.Context, _ *sql.Tx, rel model.ProblemRelation) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if rel.FromProblemID == rel.ToProblemID {
		return common.Invalid("a problem cannot be related to itself")
	}
	if err := s.requireRows(rel.FromProblemID, 0, 0, 0); err != nil {
		return err
	}
	if err := s.requireRows(rel.ToProblemID, 0, 0, 0); err != nil {
		return err
	}
	key := pair{rel.FromProblemID, rel.ToProblemID}
	if _, ok := s.data.relations[key]; ok {
		return common.Conflict("relation")
	}
	s.data.relations[key] = rel
	return nil
}

func (r linkRepo) DeleteRelation(_ context.Context, _ *sql.Tx, fromProblemID, toProblemID int64) error {
	return r.detach(func(t *tables) bool {
		key := pair{fromProblemID, toProblemID}
		_, ok := t.relations[key]
		delete(t.relations, key)
		return ok
	}, fmt.Errorf("relation %d -> %d %w", fromProblemID, toProblemID, common.ErrNotFound))
}

func (r linkRepo) ListRelationsFrom(_ context.Context, _ *sql.Tx, problemID int64) ([]model.ProblemRelation, error) {
	return r.relations(func(key pair) bool { return key[0] == problemID }, 1)
}

func (r linkRepo) ListRelationsTo(_ context.Context, _ *sql.Tx, problemID int64) ([]model.ProblemRelation, error) {
	return r.relations(func(key pair) bool { return key[1] == problemID }, 0)
}

// relations returns the matching rows ordered by the other endpoint, key[sortBy].
func (r linkRepo) relations(keep func(pair) bool, sortBy int) ([]model.ProblemRelation, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}

	keys := []pair{}
	for key := range s.data.relations {
		if keep(key) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i][sortBy] < keys[j][sortBy] })

	out := make([]model.ProblemRelation, 0, len(keys))
	for _, key := range keys {
		out = append(out, s.data.relations[key])
	}
	return out, nil
}

func (r linkRepo) detach(remove func(*tables) bool, notFound error) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if !remove(s.data) {
		return notFound
	}
	return nil
}

// ---- usage ranking ----

type usageRanker struct{ s *Store }

func (u usageRanker) TopTags(_ context.Context, _ *sql.Tx, limit int) ([]model.TopTag, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}

	counts := map[int64]int64{}
	for key := range s.data.problemTags {
		counts[key[1]]++
	}
	top := make([]model.TopTag, 0, len(s.data.tags))
	for id, t := range s.data.tags {
		top = append(top, model.TopTag{TagID: id, TagName: t.TagName, UsageCount: counts[id]})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].UsageCount != top[j].UsageCount {
			return top[i].UsageCount > top[j].UsageCount
		}
		return top[i].TagID < top[j].TagID
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (u usageRanker) TopResources(_ context.Context, _ *sql.Tx, limit int) ([]model.TopResource, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}

	counts := map[int64]int64{}
	for key := range s.data.problemResources {
		counts[key[1]]++
	}
	for key := range s.data.solutionResources {
		counts[key[1]]++
	}
	top := make([]model.TopResource, 0, len(s.data.resources))
	for id, res := range s.data.resources {
		top = append(top, model.TopResource{ResourceID: id, Title: res.Title, UsageCount: counts[id]})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].UsageCount != top[j].UsageCount {
			return top[i].UsageCount > top[j].UsageCount
		}
		return top[i].ResourceID < top[j].ResourceID
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}
