package inventory

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const (
	OpAddAlcohol    = "add_alcohol"
	OpAddBottle     = "add_bottle"
	OpConsume       = "consume"
	OpRefill        = "refill"
	OpRemoveAlcohol = "remove_alcohol"
	OpAddShisha     = "add_shisha"
	OpServe         = "serve"
	OpRestock       = "restock"
	OpAdjustShisha  = "adjust_shisha"
	OpRemoveShisha  = "remove_shisha"
	OpAddMisc       = "add_misc"
	OpAdjustMisc    = "adjust_misc"
	OpRemoveMisc    = "remove_misc"
)

// Service runs each request as one load-mutate-save cycle against the Store.
// Cycles are serialized in-process so concurrent requests cannot lose each
// other's updates.
type Service struct {
	store   Store
	log     *zap.Logger
	metrics *Metrics

	mu sync.Mutex
}

func NewService(store Store, log *zap.Logger, metrics *Metrics) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log, metrics: metrics}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) State(ctx context.Context) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.store.Load(ctx)
	if err != nil {
		return Document{}, err
	}
	s.metrics.observeDocument(d)
	return d, nil
}

func (s *Service) LowStock(ctx context.Context) (LowStock, error) {
	d, err := s.State(ctx)
	if err != nil {
		return LowStock{}, err
	}
	return d.LowStock(), nil
}

// mutate applies fn to a freshly loaded document and saves it. Nothing is
// written when fn fails.
func (s *Service) mutate(ctx context.Context, op string, fn func(d *Document) error) (d Document, err error) {
	defer func() { s.metrics.observeOp(op, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err = s.store.Load(ctx)
	if err != nil {
		return Document{}, err
	}
	if err = fn(&d); err != nil {
		return Document{}, err
	}
	if err = s.store.Save(ctx, d); err != nil {
		return Document{}, err
	}

	s.log.Debug("inventory updated", zap.String("op", op))
	s.metrics.observeDocument(d)
	return d, nil
}

func (s *Service) AddAlcohol(ctx context.Context, in AlcoholInput) ([]AlcoholItem, error) {
	d, err := s.mutate(ctx, OpAddAlcohol, func(d *Document) error { return d.UpsertAlcohol(in) })
	return d.Alcohols, err
}

func (s *Service) AddBottle(ctx context.Context, in BottleInput) ([]AlcoholItem, error) {
	d, err := s.mutate(ctx, OpAddBottle, func(d *Document) error { return d.AddBottle(in) })
	return d.Alcohols, err
}

func (s *Service) Consume(ctx context.Context, in ConsumeInput) ([]AlcoholItem, error) {
	d, err := s.mutate(ctx, OpConsume, func(d *Document) error { return d.Consume(in) })
	return d.Alcohols, err
}

func (s *Service) Refill(ctx context.Context, name string) ([]AlcoholItem, error) {
	d, err := s.mutate(ctx, OpRefill, func(d *Document) error { return d.Refill(name) })
	return d.Alcohols, err
}

func (s *Service) RemoveAlcohol(ctx context.Context, name string) ([]AlcoholItem, error) {
	d, err := s.mutate(ctx, OpRemoveAlcohol, func(d *Document) error { return d.RemoveAlcohol(name) })
	return d.Alcohols, err
}

func (s *Service) AddShisha(ctx context.Context, in ShishaInput) ([]ShishaItem, error) {
	d, err := s.mutate(ctx, OpAddShisha, func(d *Document) error { return d.UpsertShisha(in) })
	return d.Shishas, err
}

func (s *Service) Serve(ctx context.Context, name string) ([]ShishaItem, error) {
	d, err := s.mutate(ctx, OpServe, func(d *Document) error { return d.Serve(name) })
	return d.Shishas, err
}

func (s *Service) Restock(ctx context.Context, name string) ([]ShishaItem, error) {
	d, err := s.mutate(ctx, OpRestock, func(d *Document) error { return d.Restock(name) })
	return d.Shishas, err
}

func (s *Service) AdjustShisha(ctx context.Context, in AdjustInput) ([]ShishaItem, error) {
	d, err := s.mutate(ctx, OpAdjustShisha, func(d *Document) error { return d.AdjustShisha(in) })
	return d.Shishas, err
}

func (s *Service) RemoveShisha(ctx context.Context, name string) ([]ShishaItem, error) {
	d, err := s.mutate(ctx, OpRemoveShisha, func(d *Document) error { return d.RemoveShisha(name) })
	return d.Shishas, err
}

func (s *Service) AddMisc(ctx context.Context, in MiscInput) ([]MiscItem, error) {
	d, err := s.mutate(ctx, OpAddMisc, func(d *Document) error { return d.UpsertMisc(in) })
	return d.Misc, err
}

func (s *Service) AdjustMisc(ctx context.Context, in AdjustInput) ([]MiscItem, error) {
	d, err := s.mutate(ctx, OpAdjustMisc, func(d *Document) error { return d.AdjustMisc(in) })
	return d.Misc, err
}

func (s *Service) RemoveMisc(ctx context.Context, name string) ([]MiscItem, error) {
	d, err := s.mutate(ctx, OpRemoveMisc, func(d *Document) error { return d.RemoveMisc(name) })
	return d.Misc, err
}
