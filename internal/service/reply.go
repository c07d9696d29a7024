package service

import (
	"context"

	"github.com/karen-colon/b3-backend-social-net/internal/model"
	"github.com/karen-colon/b3-backend-social-net/internal/monitoring"
	"github.com/karen-colon/b3-backend-social-net/internal/queue"
	"github.com/karen-colon/b3-backend-social-net/internal/repository"
)

type ReplyService struct {
	replyRepo       repository.ReplyRepository
	publicationRepo repository.PublicationRepository
	userRepo        repository.UserRepository
	publisher       queue.Publisher
}

func NewReplyService(
	replyRepo repository.ReplyRepository,
	publicationRepo repository.PublicationRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *ReplyService {
	return &ReplyService{
		replyRepo:       replyRepo,
		publicationRepo: publicationRepo,
		userRepo:        userRepo,
		publisher:       publisher,
	}
}

// Add creates a reply by userID on the publication. The repository writes the reply
// and the publication's reply_count in the same transaction.
func (s *ReplyService) Add(ctx context.Context, userID int64, req *model.AddReplyRequest) (*model.Reply, error) {
	text, err := cleanText(req.Text)
	if err != nil {
		return nil, err
	}

	exists, err := s.publicationRepo.Exists(ctx, req.PublicationID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrPublicationNotFound
	}

	reply, err := s.replyRepo.Create(ctx, req.PublicationID, userID, text)
	if err != nil {
		return nil, err
	}

	if author, err := s.userRepo.GetByID(ctx, userID); err == nil {
		summary := author.Summary()
		reply.Author = &summary
	}

	monitoring.RepliesCreated.Inc()
	queue.PublishBestEffort(ctx, s.publisher, queue.NewReplyAddedEvent(reply.ID, reply.PublicationID, userID))

	return reply, nil
}

func (s *ReplyService) List(ctx context.Context, publicationID int64, page model.Page) (*model.ReplyList, error) {
	exists, err := s.publicationRepo.Exists(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrPublicationNotFound
	}

	replies, err := s.replyRepo.ListByPublication(ctx, publicationID, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	total, err := s.replyRepo.CountByPublication(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	return &model.ReplyList{Replies: replies, Total: total}, nil
}
