package service

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"formcraft/internal/config"
	"formcraft/internal/domain"
	"formcraft/internal/logger"
	"formcraft/internal/util"
	"formcraft/internal/validation"
)

// FormService defines the form operations exposed to the HTTP layer.
type FormService interface {
	CreateForm(ctx context.Context, draft domain.FormDraft) (*domain.Form, error)
	GetForm(ctx context.Context, id string) (*domain.Form, error)
	UpdateHeaderImage(ctx context.Context, id string, imageRef string) (*domain.Form, error)
	ReplaceHeaderImage(ctx context.Context, id string, filename string, image io.Reader) (*domain.Form, error)
}

type formService struct {
	repo    domain.FormRepository
	images  domain.ImageStore
	timeout time.Duration
	newID   func() string
}

// NewFormService creates a new instance of formService. images may be nil
// when uploads are disabled.
func NewFormService(repo domain.FormRepository, images domain.ImageStore, cfg *config.Config) FormService {
	return &formService{
		repo:    repo,
		images:  images,
		timeout: cfg.Server.RequestTimeout,
		newID:   util.NewULID,
	}
}

// CreateForm validates the whole draft before anything is written.
func (s *formService) CreateForm(ctx context.Context, draft domain.FormDraft) (*domain.Form, error) {
	form, err := validation.BuildForm(draft, s.newID)
	if err != nil {
		return nil, err
	}

	return withDeadline(ctx, s.timeout, "create form", func(ctx context.Context) (*domain.Form, error) {
		if err := s.repo.Create(ctx, form); err != nil {
			return nil, err
		}
		logger.Get().Info("form created",
			zap.String("form_id", form.ID),
			zap.Int("questions", len(form.Questions)))
		return form, nil
	})
}

func (s *formService) GetForm(ctx context.Context, id string) (*domain.Form, error) {
	return withDeadline(ctx, s.timeout, "get form", func(ctx context.Context) (*domain.Form, error) {
		return s.repo.GetByID(ctx, id)
	})
}

func (s *formService) UpdateHeaderImage(ctx context.Context, id string, imageRef string) (*domain.Form, error) {
	return withDeadline(ctx, s.timeout, "update header image", func(ctx context.Context) (*domain.Form, error) {
		return s.repo.UpdateHeaderImage(ctx, id, imageRef)
	})
}

// ReplaceHeaderImage stores an uploaded image and points the form at it. The
// form is looked up first so that uploads for unknown forms are not kept.
func (s *formService) ReplaceHeaderImage(ctx context.Context, id string, filename string, image io.Reader) (*domain.Form, error) {
	if s.images == nil {
		return nil, domain.NewInternalError("image uploads are not configured", nil)
	}
	return withDeadline(ctx, s.timeout, "replace header image", func(ctx context.Context) (*domain.Form, error) {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		ref, err := s.images.Save(ctx, filename, image)
		if err != nil {
			return nil, err
		}
		form, err := s.repo.UpdateHeaderImage(ctx, id, ref)
		if err != nil {
			return nil, err
		}
		logger.Get().Info("header image replaced", zap.String("form_id", id), zap.String("image", ref))
		return form, nil
	})
}
