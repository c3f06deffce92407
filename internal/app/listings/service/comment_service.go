package service

import (
	"context"
	"errors"
	"fmt"

	"roamstay/internal/app/listings/entity"
	"roamstay/internal/app/listings/repository"
)

// CommentService обрабатывает бизнес-логику комментариев
// Комментарий живет как поддокумент объявления: его ID хранится
// в списке ссылок родителя
type CommentService struct {
	commentRepo repository.CommentRepository
	listingRepo repository.ListingRepository
}

// NewCommentService создает новый сервис комментариев
func NewCommentService(
	commentRepo repository.CommentRepository,
	listingRepo repository.ListingRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		listingRepo: listingRepo,
	}
}

// CreateComment создает комментарий к объявлению
// Автор проставляется из identity, ID комментария добавляется
// в список ссылок родителя
func (s *CommentService) CreateComment(ctx context.Context, identity entity.Identity, listingID string, req *entity.CreateCommentRequest) (*entity.Comment, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	comment := &entity.Comment{
		ListingID: listing.ID,
		Text:      req.Text,
		Author: entity.Author{
			ID:       identity.UserID,
			Username: identity.Username,
		},
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	if err := s.listingRepo.AddComment(ctx, listingID, comment.ID); err != nil {
		return nil, fmt.Errorf("failed to attach comment to listing: %w", err)
	}

	return comment, nil
}

// UpdateComment обновляет комментарий с проверкой прав доступа
// Редактирует автор или админ
func (s *CommentService) UpdateComment(ctx context.Context, identity entity.Identity, commentID string, req *entity.UpdateCommentRequest) (*entity.Comment, error) {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if err := authorize(identity, comment.Author.ID, kindComment); err != nil {
		return nil, err
	}

	comment.Text = req.Text

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return comment, nil
}

// DeleteComment удаляет комментарий с проверкой прав доступа
// и убирает его ID из списка ссылок родителя
func (s *CommentService) DeleteComment(ctx context.Context, identity entity.Identity, commentID string) error {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		return err
	}

	if err := authorize(identity, comment.Author.ID, kindComment); err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	if err := s.listingRepo.RemoveComment(ctx, comment.ListingID.Hex(), comment.ID); err != nil {
		return fmt.Errorf("failed to detach comment from listing: %w", err)
	}

	return nil
}

func (s *CommentService) getComment(ctx context.Context, commentID string) (*entity.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}
