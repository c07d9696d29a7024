package service

import (
	"context"

	"github.com/karen-colon/b3-backend-social-net/internal/model"
	"github.com/karen-colon/b3-backend-social-net/internal/queue"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Services depend on repository interfaces, so each test swaps in a mock whose
// behavior is set per test through the func fields. Unset funcs fall back to a
// neutral default.

type mockUserRepository struct {
	createFn               func(ctx context.Context, user *model.User) error
	getByIDFn              func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn           func(ctx context.Context, email string) (*model.User, error)
	existsByEmailOrNickFn  func(ctx context.Context, email, nick string) (bool, error)
	identityTakenByOtherFn func(ctx context.Context, id int64, email, nick string) (bool, error)
	listFn                 func(ctx context.Context, offset, limit int) ([]model.PublicUser, error)
	countFn                func(ctx context.Context) (int, error)
	updateFn               func(ctx context.Context, user *model.User) error
	updateImageFn          func(ctx context.Context, id int64, image string) (*model.User, error)

	createCalls []*model.User
	updateCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmailOrNick(ctx context.Context, email, nick string) (bool, error) {
	if m.existsByEmailOrNickFn != nil {
		return m.existsByEmailOrNickFn(ctx, email, nick)
	}
	return false, nil
}

func (m *mockUserRepository) IdentityTakenByOther(ctx context.Context, id int64, email, nick string) (bool, error) {
	if m.identityTakenByOtherFn != nil {
		return m.identityTakenByOtherFn(ctx, id, email, nick)
	}
	return false, nil
}

func (m *mockUserRepository) List(ctx context.Context, offset, limit int) ([]model.PublicUser, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return []model.PublicUser{}, nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *model.User) error {
	m.updateCalls = append(m.updateCalls, user)
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) UpdateImage(ctx context.Context, id int64, image string) (*model.User, error) {
	if m.updateImageFn != nil {
		return m.updateImageFn(ctx, id, image)
	}
	return nil, model.ErrUserNotFound
}

type mockFollowRepository struct {
	createFn          func(ctx context.Context, followerID, followeeID int64) (*model.Follow, bool, error)
	deleteFn          func(ctx context.Context, followerID, followeeID int64) error
	existsFn          func(ctx context.Context, followerID, followeeID int64) (bool, error)
	getFollowingIDsFn func(ctx context.Context, userID int64) ([]int64, error)
	getFollowerIDsFn  func(ctx context.Context, userID int64) ([]int64, error)
	listFollowingFn   func(ctx context.Context, userID int64, offset, limit int) ([]model.FollowEdge, error)
	listFollowersFn   func(ctx context.Context, userID int64, offset, limit int) ([]model.FollowEdge, error)
	countFollowingFn  func(ctx context.Context, userID int64) (int, error)
	countFollowersFn  func(ctx context.Context, userID int64) (int, error)

	createCalls int
}

func (m *mockFollowRepository) Create(ctx context.Context, followerID, followeeID int64) (*model.Follow, bool, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followeeID)
	}
	return &model.Follow{ID: 1, FollowingUser: followerID, FollowedUser: followeeID}, true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, followeeID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followeeID)
	}
	return nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepository) GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFollowingIDsFn != nil {
		return m.getFollowingIDsFn(ctx, userID)
	}
	return []int64{}, nil
}

func (m *mockFollowRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFollowerIDsFn != nil {
		return m.getFollowerIDsFn(ctx, userID)
	}
	return []int64{}, nil
}

func (m *mockFollowRepository) ListFollowing(ctx context.Context, userID int64, offset, limit int) ([]model.FollowEdge, error) {
	if m.listFollowingFn != nil {
		return m.listFollowingFn(ctx, userID, offset, limit)
	}
	return []model.FollowEdge{}, nil
}

func (m *mockFollowRepository) ListFollowers(ctx context.Context, userID int64, offset, limit int) ([]model.FollowEdge, error) {
	if m.listFollowersFn != nil {
		return m.listFollowersFn(ctx, userID, offset, limit)
	}
	return []model.FollowEdge{}, nil
}

func (m *mockFollowRepository) CountFollowing(ctx context.Context, userID int64) (int, error) {
	if m.countFollowingFn != nil {
		return m.countFollowingFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowRepository) CountFollowers(ctx context.Context, userID int64) (int, error) {
	if m.countFollowersFn != nil {
		return m.countFollowersFn(ctx, userID)
	}
	return 0, nil
}

type mockPublicationRepository struct {
	createFn        func(ctx context.Context, userID int64, text string) (*model.Publication, error)
	getByIDFn       func(ctx context.Context, id int64) (*model.Publication, error)
	existsFn        func(ctx context.Context, id int64) (bool, error)
	deleteFn        func(ctx context.Context, id, userID int64) error
	listByUserFn    func(ctx context.Context, userID int64, offset, limit int) ([]model.Publication, error)
	countByUserFn   func(ctx context.Context, userID int64) (int, error)
	listByOwnersFn  func(ctx context.Context, ownerIDs []int64, offset, limit int) ([]model.Publication, error)
	countByOwnersFn func(ctx context.Context, ownerIDs []int64) (int, error)
	updateFileFn    func(ctx context.Context, id int64, file string) (*model.Publication, error)

	createCalls []string
}

func (m *mockPublicationRepository) Create(ctx context.Context, userID int64, text string) (*model.Publication, error) {
	m.createCalls = append(m.createCalls, text)
	if m.createFn != nil {
		return m.createFn(ctx, userID, text)
	}
	return &model.Publication{ID: 1, UserID: userID, Text: text}, nil
}

func (m *mockPublicationRepository) GetByID(ctx context.Context, id int64) (*model.Publication, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrPublicationNotFound
}

func (m *mockPublicationRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, nil
}

func (m *mockPublicationRepository) Delete(ctx context.Context, id, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, userID)
	}
	return nil
}

func (m *mockPublicationRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]model.Publication, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, offset, limit)
	}
	return []model.Publication{}, nil
}

func (m *mockPublicationRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	if m.countByUserFn != nil {
		return m.countByUserFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockPublicationRepository) ListByOwners(ctx context.Context, ownerIDs []int64, offset, limit int) ([]model.Publication, error) {
	if m.listByOwnersFn != nil {
		return m.listByOwnersFn(ctx, ownerIDs, offset, limit)
	}
	return []model.Publication{}, nil
}

func (m *mockPublicationRepository) CountByOwners(ctx context.Context, ownerIDs []int64) (int, error) {
	if m.countByOwnersFn != nil {
		return m.countByOwnersFn(ctx, ownerIDs)
	}
	return 0, nil
}

func (m *mockPublicationRepository) UpdateFile(ctx context.Context, id int64, file string) (*model.Publication, error) {
	if m.updateFileFn != nil {
		return m.updateFileFn(ctx, id, file)
	}
	return nil, model.ErrPublicationNotFound
}

type mockReplyRepository struct {
	createFn             func(ctx context.Context, publicationID, userID int64, text string) (*model.Reply, error)
	listByPublicationFn  func(ctx context.Context, publicationID int64, offset, limit int) ([]model.Reply, error)
	countByPublicationFn func(ctx context.Context, publicationID int64) (int, error)

	createCalls int
}

func (m *mockReplyRepository) Create(ctx context.Context, publicationID, userID int64, text string) (*model.Reply, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, publicationID, userID, text)
	}
	return &model.Reply{ID: 1, PublicationID: publicationID, UserID: userID, Text: text}, nil
}

func (m *mockReplyRepository) ListByPublication(ctx context.Context, publicationID int64, offset, limit int) ([]model.Reply, error) {
	if m.listByPublicationFn != nil {
		return m.listByPublicationFn(ctx, publicationID, offset, limit)
	}
	return []model.Reply{}, nil
}

func (m *mockReplyRepository) CountByPublication(ctx context.Context, publicationID int64) (int, error) {
	if m.countByPublicationFn != nil {
		return m.countByPublicationFn(ctx, publicationID)
	}
	return 0, nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	events []queue.ActivityEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, stream string, event queue.ActivityEvent) (string, error) {
	p.events = append(p.events, event)
	return "0-1", nil
}
