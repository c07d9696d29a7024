package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/karen-colon/b3-backend-social-net/internal/model"
	"github.com/karen-colon/b3-backend-social-net/internal/monitoring"
	"github.com/karen-colon/b3-backend-social-net/internal/queue"
	"github.com/karen-colon/b3-backend-social-net/internal/repository"
)

// FollowService owns the follow graph: edges, pairwise status and the id lists
// used to enrich other listings.
type FollowService struct {
	followRepo      repository.FollowRepository
	userRepo        repository.UserRepository
	publicationRepo repository.PublicationRepository
	publisher       queue.Publisher
	log             *logrus.Entry
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	publicationRepo repository.PublicationRepository,
	publisher queue.Publisher,
) *FollowService {
	return &FollowService{
		followRepo:      followRepo,
		userRepo:        userRepo,
		publicationRepo: publicationRepo,
		publisher:       publisher,
		log:             logrus.WithField("component", "follow_service"),
	}
}

// Follow creates the edge followerID -> followeeID.
// The pre-check gives the common case a clean answer; the unique index settles races.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID int64) (*model.FollowResult, error) {
	if followerID == followeeID {
		return nil, model.ErrCannotFollowSelf
	}

	followee, err := s.userRepo.GetByID(ctx, followeeID)
	if err != nil {
		return nil, err
	}

	exists, err := s.followRepo.Exists(ctx, followerID, followeeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrAlreadyFollowing
	}

	follow, inserted, err := s.followRepo.Create(ctx, followerID, followeeID)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, model.ErrAlreadyFollowing
	}

	monitoring.FollowsCreated.Inc()
	queue.PublishBestEffort(ctx, s.publisher, queue.NewUserFollowedEvent(followerID, followeeID))

	return &model.FollowResult{
		Follow: *follow,
		FollowedUserInfo: model.FollowedUserInfo{
			Name:     followee.Name,
			LastName: followee.LastName,
		},
	}, nil
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if err := s.followRepo.Delete(ctx, followerID, followeeID); err != nil {
		return err
	}

	queue.PublishBestEffort(ctx, s.publisher, queue.NewUserUnfollowedEvent(followerID, followeeID))
	return nil
}

// ListFollowIDs never fails: a lookup error is logged and both lists come back empty.
func (s *FollowService) ListFollowIDs(ctx context.Context, userID int64) model.FollowIDs {
	empty := model.FollowIDs{Following: []int64{}, Followers: []int64{}}

	following, err := s.followRepo.GetFollowingIDs(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("Failed to load following ids")
		return empty
	}

	followers, err := s.followRepo.GetFollowerIDs(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("Failed to load follower ids")
		return empty
	}

	if following == nil {
		following = []int64{}
	}
	if followers == nil {
		followers = []int64{}
	}
	return model.FollowIDs{Following: following, Followers: followers}
}

// FollowStatus reports whether userID follows otherID and whether otherID follows back.
// A failed lookup counts as false.
func (s *FollowService) FollowStatus(ctx context.Context, userID, otherID int64) model.FollowStatus {
	var status model.FollowStatus

	following, err := s.followRepo.Exists(ctx, userID, otherID)
	if err != nil {
		s.log.WithError(err).Warn("Failed to check following status")
	}
	status.Following = following

	follower, err := s.followRepo.Exists(ctx, otherID, userID)
	if err != nil {
		s.log.WithError(err).Warn("Failed to check follower status")
	}
	status.Follower = follower

	return status
}

// ListFollowing pages through the users userID follows.
func (s *FollowService) ListFollowing(ctx context.Context, userID int64, page model.Page) (*model.FollowList, error) {
	follows, err := s.followRepo.ListFollowing(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	total, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.FollowList{Follows: follows, Total: total}, nil
}

// ListFollowers pages through the users following userID.
func (s *FollowService) ListFollowers(ctx context.Context, userID int64, page model.Page) (*model.FollowList, error) {
	follows, err := s.followRepo.ListFollowers(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	total, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.FollowList{Follows: follows, Total: total}, nil
}

func (s *FollowService) Counters(ctx context.Context, userID int64) (*model.Counters, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	following, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count following: %w", err)
	}
	followers, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	publications, err := s.publicationRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count publications: %w", err)
	}

	return &model.Counters{
		UserID:       userID,
		Following:    following,
		Followers:    followers,
		Publications: publications,
	}, nil
}
