package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Stats is the dashboard payload. Field names are part of the API surface
// consumed by the frontend charts.
type Stats struct {
	TonelagemImplantada float64 `json:"tonelagem_implantada"`
	ComissaoPrevista    float64 `json:"comissao_prevista"`
	TonelagemFaturada   float64 `json:"tonelagem_faturada"`
	ComissaoRealizada   float64 `json:"comissao_realizada"`
	PedidosMesValor     float64 `json:"pedidos_mes_valor"`
	FaturadoMesValor    float64 `json:"faturado_mes_valor"`
	ComissaoMes         float64 `json:"comissao_mes"`
	ComissoesAReceber   float64 `json:"comissoes_a_receber"`
}

// Service assembles the stats panel for the current month.
type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Stats returns the current month's figures, served from cache when warm.
// This is a pure read: the overdue sweep belongs to the installment
// listing, not here.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	from, to := monthWindow(s.now().UTC())
	key, err := s.cache.BuildKey(ctx, "dashboard", "stats", from.Format("2006-01"))
	if err != nil {
		return Stats{}, err
	}
	var stats Stats
	err = s.cache.FetchJSON(ctx, key, &stats, func(ctx context.Context) (interface{}, error) {
		return s.load(ctx, from, to)
	})
	return stats, err
}

// Warm recomputes the panel and stores it, bypassing any cached value.
func (s *Service) Warm(ctx context.Context) error {
	if err := s.cache.Bump(ctx); err != nil {
		return err
	}
	_, err := s.Stats(ctx)
	return err
}

func (s *Service) load(ctx context.Context, from, to time.Time) (Stats, error) {
	var (
		orderAgg   OrderAggregates
		invoiceAgg InvoiceAggregates
		receivable float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orderAgg, err = s.repo.OrderAggregates(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		invoiceAgg, err = s.repo.InvoiceAggregates(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		receivable, err = s.repo.OutstandingCommission(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return Stats{
		TonelagemImplantada: orderAgg.ImplantedWeight / 1000,
		TonelagemFaturada:   orderAgg.InvoicedWeight / 1000,
		PedidosMesValor:     orderAgg.TotalValue,
		ComissaoPrevista:    orderAgg.ProjectedCommission,
		FaturadoMesValor:    invoiceAgg.TotalValue,
		ComissaoRealizada:   invoiceAgg.RealizedCommission,
		ComissaoMes:         invoiceAgg.RealizedCommission,
		ComissoesAReceber:   receivable,
	}, nil
}

// monthWindow returns [first instant of t's month, first instant of the
// next month) in UTC.
func monthWindow(t time.Time) (from, to time.Time) {
	from = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
