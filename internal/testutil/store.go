// Package testutil provides in-memory repository implementations for
// exercising services and routes without Postgres.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/karen-colon/b3-backend-social-net/internal/model"
	"github.com/karen-colon/b3-backend-social-net/internal/repository"
)

// Store keeps every table in memory behind one lock. It mirrors the unique,
// foreign-key and ordering rules of the SQL schema.
type Store struct {
	mu           sync.Mutex
	nextID       int64
	clock        time.Time
	users        map[int64]*model.User
	follows      []model.Follow
	publications map[int64]*model.Publication
	replies      []model.Reply
}

func NewStore() *Store {
	return &Store{
		clock:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:        make(map[int64]*model.User),
		publications: make(map[int64]*model.Publication),
	}
}

func (s *Store) Users() *UserRepository               { return &UserRepository{s} }
func (s *Store) Follows() *FollowRepository           { return &FollowRepository{s} }
func (s *Store) Publications() *PublicationRepository { return &PublicationRepository{s} }
func (s *Store) Replies() *ReplyRepository            { return &ReplyRepository{s} }

// next returns a fresh id and a strictly increasing timestamp. Caller holds mu.
func (s *Store) next() (int64, time.Time) {
	s.nextID++
	s.clock = s.clock.Add(time.Second)
	return s.nextID, s.clock
}

func (s *Store) summary(userID int64) *model.UserSummary {
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	summary := u.Summary()
	return &summary
}

func window(n, offset, limit int) (int, int) {
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}

// =============================================================================
// Users
// =============================================================================

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) || strings.EqualFold(u.Nick, user.Nick) {
			return model.ErrUserExists
		}
	}
	user.ID, user.CreatedAt = r.s.next()
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *UserRepository) ExistsByEmailOrNick(ctx context.Context, email, nick string) (bool, error) {
	return r.IdentityTakenByOther(ctx, 0, email, nick)
}

func (r *UserRepository) IdentityTakenByOther(ctx context.Context, id int64, email, nick string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.ID == id {
			continue
		}
		if strings.EqualFold(u.Email, email) || strings.EqualFold(u.Nick, nick) {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]model.PublicUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := make([]int64, 0, len(r.s.users))
	for id := range r.s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	start, end := window(len(ids), offset, limit)
	users := make([]model.PublicUser, 0, end-start)
	for _, id := range ids[start:end] {
		users = append(users, r.s.users[id].Public())
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.users), nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return model.ErrUserNotFound
	}
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r *UserRepository) UpdateImage(ctx context.Context, id int64, image string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u.Image = image
	cp := *u
	return &cp, nil
}

// =============================================================================
// Follows
// =============================================================================

type FollowRepository struct{ s *Store }

func (r *FollowRepository) Create(ctx context.Context, followerID, followeeID int64) (*model.Follow, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[followerID]; !ok {
		return nil, false, model.ErrUserNotFound
	}
	if _, ok := r.s.users[followeeID]; !ok {
		return nil, false, model.ErrUserNotFound
	}
	for _, f := range r.s.follows {
		if f.FollowingUser == followerID && f.FollowedUser == followeeID {
			return nil, false, nil
		}
	}

	id, now := r.s.next()
	follow := model.Follow{ID: id, FollowingUser: followerID, FollowedUser: followeeID, CreatedAt: now}
	r.s.follows = append(r.s.follows, follow)
	return &follow, true, nil
}

func (r *FollowRepository) Delete(ctx context.Context, followerID, followeeID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, f := range r.s.follows {
		if f.FollowingUser == followerID && f.FollowedUser == followeeID {
			r.s.follows = append(r.s.follows[:i], r.s.follows[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFollowing
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, f := range r.s.follows {
		if f.FollowingUser == followerID && f.FollowedUser == followeeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *FollowRepository) GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := []int64{}
	for _, f := range r.s.follows {
		if f.FollowingUser == userID {
			ids = append(ids, f.FollowedUser)
		}
	}
	return ids, nil
}

func (r *FollowRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := []int64{}
	for _, f := range r.s.follows {
		if f.FollowedUser == userID {
			ids = append(ids, f.FollowingUser)
		}
	}
	return ids, nil
}

// edges returns matching edges newest first with the opposite endpoint populated.
func (r *FollowRepository) edges(match func(model.Follow) (bool, int64), offset, limit int) []model.FollowEdge {
	var all []model.FollowEdge
	for i := len(r.s.follows) - 1; i >= 0; i-- {
		f := r.s.follows[i]
		ok, other := match(f)
		if !ok {
			continue
		}
		edge := model.FollowEdge{Follow: f}
		if summary := r.s.summary(other); summary != nil {
			edge.User = *summary
		}
		all = append(all, edge)
	}
	start, end := window(len(all), offset, limit)
	return append([]model.FollowEdge{}, all[start:end]...)
}

func (r *FollowRepository) ListFollowing(ctx context.Context, userID int64, offset, limit int) ([]model.FollowEdge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.edges(func(f model.Follow) (bool, int64) { return f.FollowingUser == userID, f.FollowedUser }, offset, limit), nil
}

func (r *FollowRepository) ListFollowers(ctx context.Context, userID int64, offset, limit int) ([]model.FollowEdge, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.edges(func(f model.Follow) (bool, int64) { return f.FollowedUser == userID, f.FollowingUser }, offset, limit), nil
}

func (r *FollowRepository) CountFollowing(ctx context.Context, userID int64) (int, error) {
	ids, err := r.GetFollowingIDs(ctx, userID)
	return len(ids), err
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID int64) (int, error) {
	ids, err := r.GetFollowerIDs(ctx, userID)
	return len(ids), err
}

// =============================================================================
// Publications
// =============================================================================

type PublicationRepository struct{ s *Store }

func (r *PublicationRepository) Create(ctx context.Context, userID int64, text string) (*model.Publication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return nil, model.ErrUserNotFound
	}
	id, now := r.s.next()
	p := &model.Publication{ID: id, UserID: userID, Text: text, CreatedAt: now}
	r.s.publications[id] = p
	cp := *p
	return &cp, nil
}

func (r *PublicationRepository) GetByID(ctx context.Context, id int64) (*model.Publication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.publications[id]
	if !ok {
		return nil, model.ErrPublicationNotFound
	}
	return r.withOwner(p), nil
}

func (r *PublicationRepository) withOwner(p *model.Publication) *model.Publication {
	cp := *p
	cp.Owner = r.s.summary(p.UserID)
	return &cp
}

func (r *PublicationRepository) Exists(ctx context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.publications[id]
	return ok, nil
}

func (r *PublicationRepository) Delete(ctx context.Context, id, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.publications[id]
	if !ok || p.UserID != userID {
		return model.ErrPublicationNotFound
	}
	delete(r.s.publications, id)

	// replies cascade with the publication
	kept := r.s.replies[:0]
	for _, reply := range r.s.replies {
		if reply.PublicationID != id {
			kept = append(kept, reply)
		}
	}
	r.s.replies = kept
	return nil
}

// selectNewest returns matching publications newest first. Caller holds mu.
func (r *PublicationRepository) selectNewest(match func(*model.Publication) bool) []model.Publication {
	var all []model.Publication
	for _, p := range r.s.publications {
		if match(p) {
			all = append(all, *r.withOwner(p))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all
}

func (r *PublicationRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]model.Publication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := r.selectNewest(func(p *model.Publication) bool { return p.UserID == userID })
	start, end := window(len(all), offset, limit)
	return append([]model.Publication{}, all[start:end]...), nil
}

func (r *PublicationRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.selectNewest(func(p *model.Publication) bool { return p.UserID == userID })), nil
}

func ownedBy(ownerIDs []int64) func(*model.Publication) bool {
	set := make(map[int64]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		set[id] = true
	}
	return func(p *model.Publication) bool { return set[p.UserID] }
}

func (r *PublicationRepository) ListByOwners(ctx context.Context, ownerIDs []int64, offset, limit int) ([]model.Publication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := r.selectNewest(ownedBy(ownerIDs))
	start, end := window(len(all), offset, limit)
	return append([]model.Publication{}, all[start:end]...), nil
}

func (r *PublicationRepository) CountByOwners(ctx context.Context, ownerIDs []int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.selectNewest(ownedBy(ownerIDs))), nil
}

func (r *PublicationRepository) UpdateFile(ctx context.Context, id int64, file string) (*model.Publication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.publications[id]
	if !ok {
		return nil, model.ErrPublicationNotFound
	}
	p.File = &file
	return r.withOwner(p), nil
}

// =============================================================================
// Replies
// =============================================================================

type ReplyRepository struct{ s *Store }

func (r *ReplyRepository) Create(ctx context.Context, publicationID, userID int64, text string) (*model.Reply, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.publications[publicationID]
	if !ok {
		return nil, model.ErrPublicationNotFound
	}
	id, now := r.s.next()
	reply := model.Reply{ID: id, PublicationID: publicationID, UserID: userID, Text: text, CreatedAt: now}
	r.s.replies = append(r.s.replies, reply)
	p.ReplyCount++
	return &reply, nil
}

func (r *ReplyRepository) ListByPublication(ctx context.Context, publicationID int64, offset, limit int) ([]model.Reply, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var all []model.Reply
	for i := len(r.s.replies) - 1; i >= 0; i-- {
		reply := r.s.replies[i]
		if reply.PublicationID == publicationID {
			reply.Author = r.s.summary(reply.UserID)
			all = append(all, reply)
		}
	}
	start, end := window(len(all), offset, limit)
	return append([]model.Reply{}, all[start:end]...), nil
}

func (r *ReplyRepository) CountByPublication(ctx context.Context, publicationID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, reply := range r.s.replies {
		if reply.PublicationID == publicationID {
			n++
		}
	}
	return n, nil
}

var (
	_ repository.UserRepository        = (*UserRepository)(nil)
	_ repository.FollowRepository      = (*FollowRepository)(nil)
	_ repository.PublicationRepository = (*PublicationRepository)(nil)
	_ repository.ReplyRepository       = (*ReplyRepository)(nil)
)
