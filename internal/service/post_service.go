package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dom/blog-website/internal/domain"
	"github.com/dom/blog-website/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PostService struct {
	postRepo repository.PostRepository
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

type PostInput struct {
	Title string
	Body  string
	Tags  []string
}

func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, input PostInput) (*domain.Post, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	tags, err := json.Marshal(input.Tags)
	if err != nil {
		return nil, fmt.Errorf("%w: tags", domain.ErrInvalidInput)
	}

	post := &domain.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     input.Title,
		Body:      input.Body,
		Tags:      datatypes.JSON(tags),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) List(ctx context.Context, limit, offset int) ([]*domain.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.postRepo.List(ctx, limit, offset)
}

func (s *PostService) Update(ctx context.Context, authorID, id uuid.UUID, input PostInput) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != authorID {
		return nil, domain.ErrNotAuthor
	}

	if input.Title != "" {
		post.Title = input.Title
	}
	post.Body = input.Body
	if input.Tags != nil {
		tags, err := json.Marshal(input.Tags)
		if err != nil {
			return nil, fmt.Errorf("%w: tags", domain.ErrInvalidInput)
		}
		post.Tags = datatypes.JSON(tags)
	}
	post.UpdatedAt = time.Now().UTC()

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, authorID, id uuid.UUID) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != authorID {
		return domain.ErrNotAuthor
	}
	return s.postRepo.Delete(ctx, id)
}
