package workspace

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/warehouse-management/internal/article"
	"github.com/frahmantamala/warehouse-management/internal/permission"
	"github.com/frahmantamala/warehouse-management/internal/store"
)

// Workflows are the cross-store operations. Each one runs as a Saga whose
// steps go through the repositories, so every step is gated and logged.
type Workflows struct {
	articles *Articles
	global   *Repository[article.Article]
	racks    *Racks
	stores   *Repository[store.Store]
	g        *guard
	logger   *slog.Logger
}

type CopyResult struct {
	Copied  int `json:"copiedCount"`
	Skipped int `json:"skippedCount"`
	Failed  int `json:"failedCount"`
}

type BulkResult struct {
	Created int `json:"createdCount"`
	Failed  int `json:"failedCount"`
}

// CopyArticles copies every cached article of source into target. Existing
// target articles are skipped unless overwrite is set.
func (w *Workflows) CopyArticles(ctx context.Context, source, target string, overwrite bool) (CopyResult, *Saga, error) {
	var res CopyResult
	s, err := w.g.begin()
	if err != nil {
		return res, nil, err
	}
	subject := source + " -> " + target
	if source == target {
		return res, nil, w.g.reject(s, "copy", "article", subject, ErrSameStore, msgSameStore)
	}
	for _, storeID := range []string{source, target} {
		if err := w.g.authorize(s, permission.ArticleCopy, storeID); err != nil {
			return res, nil, w.g.deny(s, "copy", "article", subject, err)
		}
	}

	saga := NewSaga("copy articles "+subject, w.logger)
	for _, a := range w.articles.snapshot() {
		if a.StoreID != source {
			continue
		}
		existing, exists := w.articles.find(Key{ID: a.ID, StoreID: target})
		switch {
		case exists && !overwrite:
			res.Skipped++
		case exists:
			next := cloneArticle(a)
			next.StoreID = target
			next.RackID, next.ShelfNumber = existing.RackID, existing.ShelfNumber
			saga.AddStep("update "+a.ID, false,
				func(ctx context.Context) error {
					_, err := w.articles.Update(ctx, next)
					return err
				},
				func(ctx context.Context) error {
					_, err := w.articles.Update(ctx, existing)
					return err
				})
		default:
			next := cloneArticle(a)
			next.StoreID = target
			id := a.ID
			saga.AddStep("create "+id, false,
				func(ctx context.Context) error {
					c := cloneArticle(next)
					c.RackID, c.ShelfNumber = w.racks.FirstPlacement(target)
					_, err := w.articles.Create(ctx, c)
					return err
				},
				func(ctx context.Context) error {
					return w.articles.Delete(ctx, id, target)
				})
		}
	}

	if err := saga.Run(ctx); err != nil {
		return res, saga, err
	}
	res.Copied = saga.Count(StepDone)
	res.Failed = saga.Count(StepFailed)

	w.g.log.Append(s.User.Username, "copy articles",
		fmt.Sprintf("%s copied=%d skipped=%d failed=%d overwrite=%t", subject, res.Copied, res.Skipped, res.Failed, overwrite))
	level := LevelSuccess
	if res.Failed > 0 {
		level = LevelWarning
	}
	w.g.notes.Notify(level, msgCopied, res.Copied, res.Skipped, res.Failed)
	return res, saga, nil
}

// TransferStock moves quantity units of one article from source to target.
// Nothing is touched when the source holds fewer units than requested.
func (w *Workflows) TransferStock(ctx context.Context, source, target, articleID string, quantity int) (*Saga, error) {
	s, err := w.g.begin()
	if err != nil {
		return nil, err
	}
	subject := fmt.Sprintf("%s %s -> %s", articleID, source, target)

	if quantity <= 0 {
		return nil, w.g.reject(s, "transfer", "article", subject, ErrInvalidQuantity, msgBadQuantity)
	}
	if source == target {
		return nil, w.g.reject(s, "transfer", "article", subject, ErrSameStore, msgSameStore)
	}
	for _, storeID := range []string{source, target} {
		if err := w.g.authorize(s, permission.ArticleTransfer, storeID); err != nil {
			return nil, w.g.deny(s, "transfer", "article", subject, err)
		}
	}
	srcKey := Key{ID: articleID, StoreID: source}
	src, ok := w.articles.find(srcKey)
	if !ok {
		err := fmt.Errorf("%w: article %s", ErrNotFound, srcKey)
		return nil, w.g.reject(s, "transfer", "article", subject, err, msgNotFound, w.g.notes.tr.T("article"), srcKey.String())
	}
	if quantity > src.Quantity {
		err := fmt.Errorf("%w: %d requested, %d available", ErrInsufficientStock, quantity, src.Quantity)
		return nil, w.g.reject(s, "transfer", "article", subject, err, msgInsufficient, articleID, src.Quantity)
	}

	saga := NewSaga("transfer "+subject, w.logger)
	saga.AddStep("decrement "+source, true,
		func(ctx context.Context) error { return w.adjust(ctx, srcKey, -quantity) },
		func(ctx context.Context) error { return w.adjust(ctx, srcKey, quantity) })

	dstKey := Key{ID: articleID, StoreID: target}
	created := false
	saga.AddStep("increment "+target, true,
		func(ctx context.Context) error {
			if _, exists := w.articles.find(dstKey); exists {
				created = false
				return w.adjust(ctx, dstKey, quantity)
			}
			next := cloneArticle(src)
			next.StoreID = target
			next.RackID, next.ShelfNumber = article.NoPlacement, article.NoPlacement
			next.Quantity = quantity
			if _, err := w.articles.Create(ctx, next); err != nil {
				return err
			}
			created = true
			return nil
		},
		func(ctx context.Context) error {
			if created {
				return w.articles.Delete(ctx, articleID, target)
			}
			return w.adjust(ctx, dstKey, -quantity)
		})

	if err := saga.Run(ctx); err != nil {
		w.g.log.Append(s.User.Username, "transfer article failed", describeFailure(subject, err))
		w.g.notes.Notify(LevelError, msgStepFailed, saga.Name(), err.Error())
		return saga, err
	}

	w.g.log.Append(s.User.Username, "transfer article", fmt.Sprintf("%s quantity=%d", subject, quantity))
	w.g.notes.Notify(LevelSuccess, msgTransferred, quantity, articleID, source, target)
	return saga, nil
}

func (w *Workflows) adjust(ctx context.Context, key Key, delta int) error {
	cur, ok := w.articles.find(key)
	if !ok {
		return fmt.Errorf("%w: article %s", ErrNotFound, key)
	}
	if cur.Quantity+delta < 0 {
		return fmt.Errorf("%w: %d available", ErrInsufficientStock, cur.Quantity)
	}
	cur.Quantity += delta
	_, err := w.articles.Update(ctx, cur)
	return err
}

// AddArticles creates each article independently; failures do not stop the rest.
func (w *Workflows) AddArticles(ctx context.Context, items []article.Article) (BulkResult, *Saga, error) {
	var res BulkResult
	s, err := w.g.begin()
	if err != nil {
		return res, nil, err
	}

	saga := NewSaga(fmt.Sprintf("add %d articles", len(items)), w.logger)
	for _, a := range items {
		a := cloneArticle(a)
		a.Normalize()
		saga.AddStep("create "+a.ID+"@"+a.StoreID, false,
			func(ctx context.Context) error {
				_, err := w.articles.Create(ctx, a)
				return err
			},
			func(ctx context.Context) error {
				return w.articles.Delete(ctx, a.ID, a.StoreID)
			})
	}
	if err := saga.Run(ctx); err != nil {
		return res, saga, err
	}
	res.Created = saga.Count(StepDone)
	res.Failed = saga.Count(StepFailed)

	w.g.log.Append(s.User.Username, "add articles", fmt.Sprintf("created=%d failed=%d", res.Created, res.Failed))
	return res, saga, nil
}

// CreateStoreWithDefaults creates st and seeds it with the listed global
// catalog articles at zero quantity. The store itself is the only critical step.
func (w *Workflows) CreateStoreWithDefaults(ctx context.Context, st store.Store, defaults []string) (*Saga, error) {
	s, err := w.g.begin()
	if err != nil {
		return nil, err
	}
	st.Normalize()

	saga := NewSaga("create store "+st.ID, w.logger)
	saga.AddStep("create store", true,
		func(ctx context.Context) error {
			_, err := w.stores.Create(ctx, st)
			return err
		},
		func(ctx context.Context) error {
			return w.stores.Delete(ctx, st.ID, "")
		})

	for _, id := range defaults {
		id := id
		saga.AddStep("add "+id, false,
			func(ctx context.Context) error {
				g, err := w.global.Get(id, "")
				if err != nil {
					return err
				}
				a := cloneArticle(g)
				a.StoreID = st.ID
				a.RackID, a.ShelfNumber = article.NoPlacement, article.NoPlacement
				a.Quantity = 0
				_, err = w.articles.Create(ctx, a)
				return err
			},
			func(ctx context.Context) error {
				return w.articles.Delete(ctx, id, st.ID)
			})
	}

	if err := saga.Run(ctx); err != nil {
		return saga, err
	}
	added := saga.Count(StepDone) - 1
	w.g.log.Append(s.User.Username, "create store with defaults", fmt.Sprintf("%s defaults=%d/%d", st.ID, added, len(defaults)))
	w.g.notes.Notify(LevelSuccess, msgStoreCreated, st.ID, added, len(defaults))
	return saga, nil
}
