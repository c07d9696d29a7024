package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/karen-colon/b3-backend-social-net/internal/model"
	"github.com/karen-colon/b3-backend-social-net/internal/monitoring"
	"github.com/karen-colon/b3-backend-social-net/internal/queue"
	"github.com/karen-colon/b3-backend-social-net/internal/repository"
)

type PublicationService struct {
	repo      repository.PublicationRepository
	follows   *FollowService
	publisher queue.Publisher
}

func NewPublicationService(repo repository.PublicationRepository, follows *FollowService, publisher queue.Publisher) *PublicationService {
	return &PublicationService{
		repo:      repo,
		follows:   follows,
		publisher: publisher,
	}
}

// Create stores a publication owned by userID.
func (s *PublicationService) Create(ctx context.Context, userID int64, req *model.CreatePublicationRequest) (*model.Publication, error) {
	text, err := cleanText(req.Text)
	if err != nil {
		return nil, err
	}

	publication, err := s.repo.Create(ctx, userID, text)
	if err != nil {
		return nil, err
	}

	monitoring.PublicationsCreated.Inc()
	queue.PublishBestEffort(ctx, s.publisher, queue.NewPublicationCreatedEvent(publication.ID, userID))

	return publication, nil
}

func (s *PublicationService) GetByID(ctx context.Context, id int64) (*model.Publication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PublicationService) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// Delete removes the publication only for its owner. Anyone else gets ErrPublicationNotFound.
func (s *PublicationService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	queue.PublishBestEffort(ctx, s.publisher, queue.NewPublicationDeletedEvent(id, userID))
	return nil
}

func (s *PublicationService) ListByUser(ctx context.Context, userID int64, page model.Page) (*model.PublicationList, error) {
	publications, err := s.repo.ListByUser(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.PublicationList{Publications: publications, Total: total}, nil
}

// AttachMedia stores a media reference on the publication.
func (s *PublicationService) AttachMedia(ctx context.Context, id int64, file string) (*model.Publication, error) {
	return s.repo.UpdateFile(ctx, id, file)
}

// Feed returns publications by the users userID follows, newest first.
// The following ids come from the follow graph, which degrades to an empty list on
// lookup failure, so a broken follows table reads as ErrNoFollowing.
func (s *PublicationService) Feed(ctx context.Context, userID int64, page model.Page) (*model.PublicationList, []int64, error) {
	ids := s.follows.ListFollowIDs(ctx, userID)
	if len(ids.Following) == 0 {
		return nil, nil, model.ErrNoFollowing
	}

	publications, err := s.repo.ListByOwners(ctx, ids.Following, page.Offset(), page.Limit)
	if err != nil {
		return nil, nil, err
	}
	if len(publications) == 0 {
		return nil, ids.Following, model.ErrNoPublications
	}

	total, err := s.repo.CountByOwners(ctx, ids.Following)
	if err != nil {
		return nil, nil, err
	}

	return &model.PublicationList{Publications: publications, Total: total}, ids.Following, nil
}

func cleanText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", model.ErrTextRequired
	}
	if utf8.RuneCountInString(text) > model.MaxPublicationTextLength {
		return "", model.ErrTextTooLong
	}
	return text, nil
}
