package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/core/common/validation"
	articleDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/article"
	"github.com/frahmantamala/warehouse-management/internal/core/events"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	// List returns store articles; an empty storeID means every store except the global catalog.
	List(ctx context.Context, storeID string, lowStock bool) ([]*articleDatamodel.Article, error)
	GetByID(ctx context.Context, id, storeID string) (*articleDatamodel.Article, error)
	Create(ctx context.Context, a *articleDatamodel.Article) error
	Update(ctx context.Context, a *articleDatamodel.Article) error
	Delete(ctx context.Context, id, storeID string) error
}

type Service struct {
	repo      RepositoryAPI
	policy    *auth.ABACPolicy
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, policy *auth.ABACPolicy, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: policy, publisher: publisher, logger: logger}
}

var (
	errArticleNotFound = apperrors.NewNotFoundError("article not found", apperrors.ErrCodeArticleNotFound)
	errGlobalStore     = apperrors.NewValidationFieldError("storeId", "use the global article endpoints for catalog entries", apperrors.ErrCodeInvalidStore)
)

func details(a *articleDatamodel.Article) string {
	return fmt.Sprintf("name=%s quantity=%d rack=%s shelf=%s", a.Name, a.Quantity, a.RackID, a.ShelfNumber)
}

func (s *Service) List(ctx context.Context, actor *auth.User, filter ListFilter) ([]*Article, error) {
	if err := s.policy.Authorize(actor, permission.ArticleView, filter.StoreID); err != nil {
		return nil, err
	}
	storeID := filter.StoreID
	if storeID == "" {
		storeID = s.policy.StoreScope(actor)
	}

	rows, err := s.repo.List(ctx, storeID, filter.LowStock)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list articles", err)
	}
	out := make([]*Article, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.User, id, storeID string) (*Article, error) {
	if err := s.policy.Authorize(actor, permission.ArticleView, storeID); err != nil {
		return nil, err
	}
	return s.get(ctx, id, storeID)
}

func (s *Service) get(ctx context.Context, id, storeID string) (*Article, error) {
	row, err := s.repo.GetByID(ctx, id, storeID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get article", err)
	}
	if row == nil {
		return nil, errArticleNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, actor *auth.User, in Article) (*Article, error) {
	if in.IsGlobal() {
		return nil, errGlobalStore
	}
	if err := s.policy.Authorize(actor, permission.ArticleCreate, in.StoreID); err != nil {
		return nil, err
	}
	return s.create(ctx, actor, in, events.EntityArticle)
}

func (s *Service) create(ctx context.Context, actor *auth.User, in Article, entity string) (*Article, error) {
	in.Normalize()
	if verr := validation.Struct(in); verr != nil {
		return nil, verr
	}

	existing, err := s.repo.GetByID(ctx, in.ID, in.StoreID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check article", err)
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateKey.WithMessage(fmt.Sprintf("article %s already exists in store %s", in.ID, in.StoreID))
	}

	row := ToDataModel(&in)
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateKey
		}
		return nil, apperrors.NewInternalError("failed to create article", err)
	}

	s.logger.Info("article created", "article_id", row.ID, "store_id", row.StoreID, "quantity", row.Quantity)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, entity, events.ActionCreated, row.ID, row.StoreID, details(row)))
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, actor *auth.User, in Article) (*Article, error) {
	if in.IsGlobal() {
		return nil, errGlobalStore
	}
	if err := s.policy.Authorize(actor, permission.ArticleUpdate, in.StoreID); err != nil {
		return nil, err
	}
	return s.update(ctx, actor, in, events.EntityArticle)
}

func (s *Service) update(ctx context.Context, actor *auth.User, in Article, entity string) (*Article, error) {
	in.Normalize()
	if verr := validation.Struct(in); verr != nil {
		return nil, verr
	}

	existing, err := s.repo.GetByID(ctx, in.ID, in.StoreID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get article", err)
	}
	if existing == nil {
		return nil, errArticleNotFound
	}

	row := ToDataModel(&in)
	row.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, apperrors.NewInternalError("failed to update article", err)
	}

	s.logger.Info("article updated", "article_id", row.ID, "store_id", row.StoreID, "quantity", row.Quantity)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, entity, events.ActionUpdated, row.ID, row.StoreID, details(row)))
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.User, id, storeID string) error {
	if storeID == GlobalStoreID {
		return errGlobalStore
	}
	if err := s.policy.Authorize(actor, permission.ArticleDelete, storeID); err != nil {
		return err
	}
	return s.delete(ctx, actor, id, storeID, events.EntityArticle)
}

func (s *Service) delete(ctx context.Context, actor *auth.User, id, storeID, entity string) error {
	if _, err := s.get(ctx, id, storeID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, storeID); err != nil {
		return apperrors.NewInternalError("failed to delete article", err)
	}

	s.logger.Info("article deleted", "article_id", id, "store_id", storeID)
	events.Emit(ctx, s.publisher, events.NewEntityChangedEvent(actor.Username, entity, events.ActionDeleted, id, storeID, ""))
	return nil
}
