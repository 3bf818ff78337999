package memstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"problem_tracker/internal/common"
	"problem_tracker/internal/domain/model"
)

func missing(entity string) error {
	return fmt.Errorf("%s %w", entity, common.ErrNotFound)
}

func containsFold(field, keyword string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(keyword))
}

func equalFoldPtr(field *string, want string) bool {
	return field != nil && strings.EqualFold(*field, want)
}

// ---- users ----

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, _ *sql.Tx, u *model.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if err := s.uniqueUser(*u); err != nil {
		return err
	}
	u.ID = s.nextID("users")
	u.CreatedAt = s.tick()
	s.data.users[u.ID] = *u
	return nil
}

func (r userRepo) FindByID(_ context.Context, _ *sql.Tx, id int64) (*model.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}
	u, ok := s.data.users[id]
	if !ok {
		return nil, common.NotFound("user", id)
	}
	return &u, nil
}

func (r userRepo) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.User, error) {
	return r.FindByID(ctx, tx, id)
}

func (r userRepo) Update(_ context.Context, _ *sql.Tx, u *model.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if _, ok := s.data.users[u.ID]; !ok {
		return common.NotFound("user", u.ID)
	}
	if err := s.uniqueUser(*u); err != nil {
		return err
	}
	s.data.users[u.ID] = *u
	return nil
}

func (r userRepo) Delete(_ context.Context, _ *sql.Tx, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if _, ok := s.data.users[id]; !ok {
		return common.NotFound("user", id)
	}
	s.deleteUser(id)
	return nil
}

func (s *Store) uniqueUser(u model.User) error {
	for _, other := range s.data.users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username {
			return common.Conflict("username")
		}
		if other.Email == u.Email {
			return common.Conflict("email")
		}
	}
	return nil
}

func (s *Store) deleteUser(id int64) {
	for pid, p := range s.data.problems {
		if p.UserID == id {
			s.deleteProblem(pid)
		}
	}
	for rid, res := range s.data.resources {
		if res.UserID == id {
			s.deleteResource(rid)
		}
	}
	delete(s.data.users, id)
}

// ---- problems ----

type problemRepo struct{ s *Store }

func (r problemRepo) Create(_ context.Context, _ *sql.Tx, p *model.Problem) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if _, ok := s.data.users[p.UserID]; !ok {
		return missing("user")
	}
	p.ID = s.nextID("problems")
	p.CreatedAt = s.tick()
	s.data.problems[p.ID] = *p
	return nil
}

func (r problemRepo) FindByID(_ context.Context, _ *sql.Tx, id int64) (*model.Problem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}
	p, ok := s.data.problems[id]
	if !ok {
		return nil, common.NotFound("problem", id)
	}
	return &p, nil
}

func (r problemRepo) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Problem, error) {
	return r.FindByID(ctx, tx, id)
}

func (r problemRepo) FindWithAuthor(_ context.Context, _ *sql.Tx, id int64) (*model.ProblemWithAuthor, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}
	p, ok := s.data.problems[id]
	if !ok {
		return nil, common.NotFound("problem", id)
	}
	u := s.data.users[p.UserID]
	return &model.ProblemWithAuthor{
		Problem: p,
		Author:  model.UserPublic{ID: u.ID, Username: u.Username},
	}, nil
}

func (r problemRepo) Update(_ context.Context, _ *sql.Tx, p *model.Problem) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	current, ok := s.data.problems[p.ID]
	if !ok {
		return common.NotFound("problem", p.ID)
	}
	current.Title = p.Title
	current.Description = p.Description
	current.ProblemType = p.ProblemType
	current.Resolved = p.Resolved
	s.data.problems[p.ID] = current
	return nil
}

func (r problemRepo) Delete(_ context.Context, _ *sql.Tx, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if _, ok := s.data.problems[id]; !ok {
		return common.NotFound("problem", id)
	}
	s.deleteProblem(id)
	return nil
}

func (r problemRepo) Search(_ context.Context, _ *sql.Tx, f model.ProblemFilter) ([]model.Problem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}

	out := []model.Problem{}
	for _, p := range s.data.problems {
		if f.Keyword != "" {
			inDescription := p.Description != nil && containsFold(*p.Description, f.Keyword)
			if !containsFold(p.Title, f.Keyword) && !inDescription {
				continue
			}
		}
		if f.Type != "" && !equalFoldPtr(p.ProblemType, f.Type) {
			continue
		}
		if f.Tag != "" && !s.problemHasTag(p.ID, f.Tag) {
			continue
		}
		out = append(out, p)
	}
	sortProblems(out)
	return out, nil
}

func (s *Store) problemHasTag(problemID int64, tagName string) bool {
	for key := range s.data.problemTags {
		if key[0] != problemID {
			continue
		}
		if t, ok := s.data.tags[key[1]]; ok && strings.EqualFold(t.TagName, tagName) {
			return true
		}
	}
	return false
}

func (r problemRepo) ListByUser(_ context.Context, _ *sql.Tx, userID int64, limit int) ([]model.Problem, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}

	out := []model.Problem{}
	for _, p := range s.data.problems {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sortProblems(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r problemRepo) ListByResource(_ context.Context, _ *sql.Tx, resourceID int64) ([]model.ProblemSummary, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}

	linked := []model.Problem{}
	for key := range s.data.problemResources {
		if key[1] == resourceID {
			linked = append(linked, s.data.problems[key[0]])
		}
	}
	sortProblems(linked)

	out := make([]model.ProblemSummary, 0, len(linked))
	for _, p := range linked {
		out = append(out, p.Summary())
	}
	return out, nil
}

func (s *Store) deleteProblem(id int64) {
	for sid, sol := range s.data.solutions {
		if sol.ProblemID == id {
			s.deleteSolution(sid)
		}
	}
	for key := range s.data.problemTags {
		if key[0] == id {
			delete(s.data.problemTags, key)
		}
	}
	for key := range s.data.problemResources {
		if key[0] == id {
			delete(s.data.problemResources, key)
		}
	}
	for key := range s.data.relations {
		if key[0] == id || key[1] == id {
			delete(s.data.relations, key)
		}
	}
	delete(s.data.problems, id)
}

func sortProblems(ps []model.Problem) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		}
		return ps[i].ID > ps[j].ID
	})
}

// ---- solutions ----

type solutionRepo struct{ s *Store }

func (s *Store) checkSolutionRefs(sol model.Solution) error {
	if _, ok := s.data.problems[sol.ProblemID]; !ok {
		return missing("problem")
	}
	if sol.ParentSolutionID != nil {
		if sol.ID != 0 && *sol.ParentSolutionID == sol.ID {
			return common.Invalid("a solution cannot be its own parent")
		}
		if _, ok := s.data.solutions[*sol.ParentSolutionID]; !ok {
			return missing("parent solution")
		}
	}
	return nil
}

func (r solutionRepo) Create(_ context.Context, _ *sql.Tx, sol *model.Solution) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if err := s.checkSolutionRefs(*sol); err != nil {
		return err
	}
	sol.ID = s.nextID("solutions")
	sol.CreatedAt = s.tick()
	s.data.solutions[sol.ID] = *sol
	return nil
}

func (r solutionRepo) FindByID(_ context.Context, _ *sql.Tx, id int64) (*model.Solution, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}
	sol, ok := s.data.solutions[id]
	if !ok {
		return nil, common.NotFound("solution", id)
	}
	return &sol, nil
}

func (r solutionRepo) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Solution, error) {
	return r.FindByID(ctx, tx, id)
}

func (r solutionRepo) Update(_ context.Context, _ *sql.Tx, sol *model.Solution) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	current, ok := s.data.solutions[sol.ID]
	if !ok {
		return common.NotFound("solution", sol.ID)
	}
	if err := s.checkSolutionRefs(*sol); err != nil {
		return err
	}
	updated := *sol
	updated.CreatedAt = current.CreatedAt
	s.data.solutions[sol.ID] = updated
	return nil
}

func (r solutionRepo) Delete(_ context.Context, _ *sql.Tx, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if _, ok := s.data.solutions[id]; !ok {
		return common.NotFound("solution", id)
	}
	s.deleteSolution(id)
	return nil
}

func (r solutionRepo) ListByProblem(_ context.Context, _ *sql.Tx, problemID int64) ([]model.Solution, error) {
	return r.filter(func(sol model.Solution) bool { return sol.ProblemID == problemID }, 0)
}

func (r solutionRepo) ListChildren(_ context.Context, _ *sql.Tx, parentID int64) ([]model.Solution, error) {
	return r.filter(func(sol model.Solution) bool {
		return sol.ParentSolutionID != nil && *sol.ParentSolutionID == parentID
	}, 0)
}

func (r solutionRepo) CountChildren(ctx context.Context, tx *sql.Tx, parentID int64) (int, error) {
	children, err := r.ListChildren(ctx, tx, parentID)
	if err != nil {
		return 0, err
	}
	return len(children), nil
}

func (r solutionRepo) ListRecentByOwner(_ context.Context, _ *sql.Tx, userID int64, limit int) ([]model.Solution, error) {
	problems := r.s.problemOwners()
	return r.filter(func(sol model.Solution) bool { return problems[sol.ProblemID] == userID }, limit)
}

func (r solutionRepo) ListByResource(_ context.Context, _ *sql.Tx, resourceID int64) ([]model.Solution, error) {
	r.s.mu.Lock()
	linked := map[int64]bool{}
	for key := range r.s.data.solutionResources {
		if key[1] == resourceID {
			linked[key[0]] = true
		}
	}
	r.s.mu.Unlock()
	return r.filter(func(sol model.Solution) bool { return linked[sol.ID] }, 0)
}

func (s *Store) problemOwners() map[int64]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	owners := make(map[int64]int64, len(s.data.problems))
	for id, p := range s.data.problems {
		owners[id] = p.UserID
	}
	return owners
}

func (r solutionRepo) filter(keep func(model.Solution) bool, limit int) ([]model.Solution, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}

	out := []model.Solution{}
	for _, sol := range s.data.solutions {
		if keep(sol) {
			out = append(out, sol)
		}
	}
	sortSolutions(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) deleteSolution(id int64) {
	for key := range s.data.solutionResources {
		if key[0] == id {
			delete(s.data.solutionResources, key)
		}
	}
	for cid, child := range s.data.solutions {
		if child.ParentSolutionID != nil && *child.ParentSolutionID == id {
			child.ParentSolutionID = nil
			s.data.solutions[cid] = child
		}
	}
	delete(s.data.solutions, id)
}

func sortSolutions(ss []model.Solution) {
	sort.Slice(ss, func(i, j int) bool {
		if !ss[i].CreatedAt.Equal(ss[j].CreatedAt) {
			return ss[i].CreatedAt.After(ss[j].CreatedAt)
		}
		return ss[i].ID > ss[j].ID
	})
}

// ---- resources ----

type resourceRepo struct{ s *Store }

func (r resourceRepo) Create(_ context.Context, _ *sql.Tx, res *model.Resource) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if _, ok := s.data.users[res.UserID]; !ok {
		return missing("user")
	}
	res.ID = s.nextID("resources")
	s.data.resources[res.ID] = *res
	return nil
}

func (r resourceRepo) FindByID(_ context.Context, _ *sql.Tx, id int64) (*model.Resource, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}
	res, ok := s.data.resources[id]
	if !ok {
		return nil, common.NotFound("resource", id)
	}
	return &res, nil
}

func (r resourceRepo) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Resource, error) {
	return r.FindByID(ctx, tx, id)
}

func (r resourceRepo) Update(_ context.Context, _ *sql.Tx, res *model.Resource) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	current, ok := s.data.resources[res.ID]
	if !ok {
		return common.NotFound("resource", res.ID)
	}
	current.URL = res.URL
	current.Title = res.Title
	current.SourcePlatform = res.SourcePlatform
	current.ContentSummary = res.ContentSummary
	current.UsefulnessScore = res.UsefulnessScore
	s.data.resources[res.ID] = current
	return nil
}

func (r resourceRepo) Delete(_ context.Context, _ *sql.Tx, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if _, ok := s.data.resources[id]; !ok {
		return common.NotFound("resource", id)
	}
	s.deleteResource(id)
	return nil
}

func (r resourceRepo) RecordVisit(_ context.Context, _ *sql.Tx, id int64, at time.Time) (*model.Resource, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}
	res, ok := s.data.resources[id]
	if !ok {
		return nil, common.NotFound("resource", id)
	}
	res.VisitCount++
	res.LastVisitedAt = &at
	s.data.resources[id] = res
	return &res, nil
}

func (r resourceRepo) Search(_ context.Context, _ *sql.Tx, f model.ResourceFilter) ([]model.Resource, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}

	out := []model.Resource{}
	for _, res := range s.data.resources {
		if f.Keyword != "" {
			inTitle := res.Title != nil && containsFold(*res.Title, f.Keyword)
			inSummary := res.ContentSummary != nil && containsFold(*res.ContentSummary, f.Keyword)
			if !inTitle && !inSummary && !containsFold(res.URL, f.Keyword) {
				continue
			}
		}
		if f.Platform != "" && !equalFoldPtr(res.SourcePlatform, f.Platform) {
			continue
		}
		if f.Tag != "" && !s.resourceHasTag(res.ID, f.Tag) {
			continue
		}
		if f.MinScore != nil && (res.UsefulnessScore == nil || *res.UsefulnessScore < *f.MinScore) {
			continue
		}
		out = append(out, res)
	}
	sortResources(out)
	return out, nil
}

func (s *Store) resourceHasTag(resourceID int64, tagName string) bool {
	for key := range s.data.resourceTags {
		if key[0] != resourceID {
			continue
		}
		if t, ok := s.data.tags[key[1]]; ok && strings.EqualFold(t.TagName, tagName) {
			return true
		}
	}
	return false
}

func (r resourceRepo) ListByUser(_ context.Context, _ *sql.Tx, userID int64) ([]model.Resource, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}

	out := []model.Resource{}
	for _, res := range s.data.resources {
		if res.UserID == userID {
			out = append(out, res)
		}
	}
	sortResources(out)
	return out, nil
}

func (r resourceRepo) ListLinkedToProblem(_ context.Context, _ *sql.Tx, problemID int64) ([]model.LinkedResource, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}

	links := []model.ProblemResource{}
	for key, l := range s.data.problemResources {
		if key[0] == problemID {
			links = append(links, l)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		if !links[i].AddedAt.Equal(links[j].AddedAt) {
			return links[i].AddedAt.Before(links[j].AddedAt)
		}
		return links[i].ResourceID < links[j].ResourceID
	})

	out := make([]model.LinkedResource, 0, len(links))
	for _, l := range links {
		out = append(out, model.LinkedResource{
			Resource:         s.data.resources[l.ResourceID],
			RelevanceScore:   l.RelevanceScore,
			ContributionType: l.ContributionType,
		})
	}
	return out, nil
}

func (r resourceRepo) ListBySolutions(_ context.Context, _ *sql.Tx, solutionIDs []int64) (map[int64][]model.Resource, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}

	out := make(map[int64][]model.Resource, len(solutionIDs))
	for _, id := range solutionIDs {
		out[id] = []model.Resource{}
	}
	for key := range s.data.solutionResources {
		if list, ok := out[key[0]]; ok {
			out[key[0]] = append(list, s.data.resources[key[1]])
		}
	}
	for _, list := range out {
		sortResources(list)
	}
	return out, nil
}

func (s *Store) deleteResource(id int64) {
	for key := range s.data.resourceTags {
		if key[0] == id {
			delete(s.data.resourceTags, key)
		}
	}
	for key := range s.data.problemResources {
		if key[1] == id {
			delete(s.data.problemResources, key)
		}
	}
	for key := range s.data.solutionResources {
		if key[1] == id {
			delete(s.data.solutionResources, key)
		}
	}
	delete(s.data.resources, id)
}

// sortResources orders by last visit, newest first, unvisited last.
func sortResources(rs []model.Resource) {
	sort.Slice(rs, func(i, j int) bool {
		a, b := rs[i].LastVisitedAt, rs[j].LastVisitedAt
		switch {
		case a == nil && b != nil:
			return false
		case a != nil && b == nil:
			return true
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		}
		return rs[i].ID > rs[j].ID
	})
}

// ---- tags ----

type tagRepo struct{ s *Store }

func (s *Store) uniqueTag(t model.Tag) error {
	for _, other := range s.data.tags {
		if other.ID != t.ID && other.TagName == t.TagName {
			return common.Conflict("tag_name")
		}
	}
	return nil
}

func (r tagRepo) Create(_ context.Context, _ *sql.Tx, t *model.Tag) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if err := s.uniqueTag(*t); err != nil {
		return err
	}
	t.ID = s.nextID("tags")
	s.data.tags[t.ID] = *t
	return nil
}

func (r tagRepo) FindByID(_ context.Context, _ *sql.Tx, id int64) (*model.Tag, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}
	t, ok := s.data.tags[id]
	if !ok {
		return nil, common.NotFound("tag", id)
	}
	return &t, nil
}

func (r tagRepo) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.Tag, error) {
	return r.FindByID(ctx, tx, id)
}

func (r tagRepo) Update(_ context.Context, _ *sql.Tx, t *model.Tag) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if _, ok := s.data.tags[t.ID]; !ok {
		return common.NotFound("tag", t.ID)
	}
	if err := s.uniqueTag(*t); err != nil {
		return err
	}
	s.data.tags[t.ID] = *t
	return nil
}

func (r tagRepo) Delete(_ context.Context, _ *sql.Tx, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return err
	}
	if _, ok := s.data.tags[id]; !ok {
		return common.NotFound("tag", id)
	}
	for key := range s.data.problemTags {
		if key[1] == id {
			delete(s.data.problemTags, key)
		}
	}
	for key := range s.data.resourceTags {
		if key[1] == id {
			delete(s.data.resourceTags, key)
		}
	}
	delete(s.data.tags, id)
	return nil
}

func (r tagRepo) List(_ context.Context, _ *sql.Tx) ([]model.Tag, error) {
	return r.collect(func(model.Tag) bool { return true })
}

func (r tagRepo) ListByProblem(_ context.Context, _ *sql.Tx, problemID int64) ([]model.Tag, error) {
	r.s.mu.Lock()
	linked := map[int64]bool{}
	for key := range r.s.data.problemTags {
		if key[0] == problemID {
			linked[key[1]] = true
		}
	}
	r.s.mu.Unlock()
	return r.collect(func(t model.Tag) bool { return linked[t.ID] })
}

func (r tagRepo) ListByResource(_ context.Context, _ *sql.Tx, resourceID int64) ([]model.Tag, error) {
	r.s.mu.Lock()
	linked := map[int64]bool{}
	for key := range r.s.data.resourceTags {
		if key[0] == resourceID {
			linked[key[1]] = true
		}
	}
	r.s.mu.Unlock()
	return r.collect(func(t model.Tag) bool { return linked[t.ID] })
}

func (r tagRepo) collect(keep func(model.Tag) bool) ([]model.Tag, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected(); err != nil {
		return nil, err
	}

	out := []model.Tag{}
	for _, t := range s.data.tags {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TagName < out[j].TagName })
	return out, nil
}
