package article

import (
	"context"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/internal/auth"
	"github.com/frahmantamala/warehouse-management/internal/core/events"
	"github.com/frahmantamala/warehouse-management/internal/permission"
)

// The global catalog shares the articles table under GlobalStoreID. Anyone with
// article:view may read it; only admin may change it.

var errAdminOnly = apperrors.ErrInsufficientPermission.WithMessage("the global catalog is maintained by admin")

func (s *Service) ListGlobal(ctx context.Context, actor *auth.User) ([]*Article, error) {
	if err := s.policy.Authorize(actor, permission.ArticleView, ""); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, GlobalStoreID, false)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list global articles", err)
	}
	out := make([]*Article, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) GetGlobal(ctx context.Context, actor *auth.User, id string) (*Article, error) {
	if err := s.policy.Authorize(actor, permission.ArticleView, ""); err != nil {
		return nil, err
	}
	return s.get(ctx, id, GlobalStoreID)
}

func (s *Service) CreateGlobal(ctx context.Context, actor *auth.User, in Article) (*Article, error) {
	if !actor.IsAdmin() {
		return nil, errAdminOnly
	}
	in.StoreID = GlobalStoreID
	return s.create(ctx, actor, in, events.EntityGlobalArticle)
}

func (s *Service) UpdateGlobal(ctx context.Context, actor *auth.User, in Article) (*Article, error) {
	if !actor.IsAdmin() {
		return nil, errAdminOnly
	}
	in.StoreID = GlobalStoreID
	return s.update(ctx, actor, in, events.EntityGlobalArticle)
}

func (s *Service) DeleteGlobal(ctx context.Context, actor *auth.User, id string) error {
	if !actor.IsAdmin() {
		return errAdminOnly
	}
	return s.delete(ctx, actor, id, GlobalStoreID, events.EntityGlobalArticle)
}
