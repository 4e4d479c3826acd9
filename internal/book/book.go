package book

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Spok95/costbook/internal/domain"
	"github.com/Spok95/costbook/internal/domain/materials"
	"github.com/Spok95/costbook/internal/domain/products"
	"github.com/Spok95/costbook/internal/domain/sales"
	"github.com/Spok95/costbook/internal/domain/shortages"
	"github.com/Spok95/costbook/internal/infra/metrics"
	"github.com/Spok95/costbook/internal/infra/store"
)

// Notifier оповещение о материалах, которые продажа увела в минус.
type Notifier interface {
	NotifyShortages(ctx context.Context, items []shortages.Item) error
}

// Book три журнала процесса: материалы, продукты, продажи.
// Загружается из Store при старте; после каждой успешной мутации изменённый журнал
// сохраняется целиком. Все операции идут под одним мьютексом.
type Book struct {
	mu sync.Mutex

	store    store.Store
	log      *slog.Logger
	metrics  *metrics.Metrics
	notifier Notifier
	now      func() time.Time

	materials *materials.Ledger
	products  *products.Catalog
	sales     *sales.Ledger
}

type Option func(*Book)

func WithMetrics(m *metrics.Metrics) Option { return func(b *Book) { b.metrics = m } }

func WithNotifier(n Notifier) Option { return func(b *Book) { b.notifier = n } }

func WithClock(now func() time.Time) Option { return func(b *Book) { b.now = now } }

// Open загружает журналы. Отсутствующий ключ = пустой журнал.
func Open(ctx context.Context, st store.Store, log *slog.Logger, opts ...Option) (*Book, error) {
	b := &Book{store: st, log: log, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}

	var (
		ms []materials.Material
		ps []products.Product
		ss []sales.Sale
	)
	if data, ok, err := st.Load(ctx, KeyMaterials); err != nil {
		return nil, fmt.Errorf("load %s: %w", KeyMaterials, err)
	} else if ok {
		if ms, err = decodeMaterials(data); err != nil {
			return nil, err
		}
	}
	if data, ok, err := st.Load(ctx, KeyProducts); err != nil {
		return nil, fmt.Errorf("load %s: %w", KeyProducts, err)
	} else if ok {
		if ps, err = decodeProducts(data); err != nil {
			return nil, err
		}
	}
	if data, ok, err := st.Load(ctx, KeySales); err != nil {
		return nil, fmt.Errorf("load %s: %w", KeySales, err)
	} else if ok {
		if ss, err = decodeSales(data, b.today()); err != nil {
			return nil, err
		}
	}

	b.materials = materials.NewLedger(ms)
	b.products = products.NewCatalog(ps, b.materials)
	b.sales = sales.NewLedger(ss, b.products, b.materials)
	b.observeStock()

	log.Info("book loaded", "materials", len(ms), "products", len(ps), "sales", len(ss))
	return b, nil
}

func (b *Book) today() string { return b.now().Format(time.DateOnly) }

// CurrentMonth YYYY-MM по часам книги.
func (b *Book) CurrentMonth() string { return sales.MonthOf(b.today()) }

/* persistence */

func (b *Book) flush(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		var (
			data []byte
			err  error
		)
		switch key {
		case KeyMaterials:
			data, err = encode(b.materials.List())
		case KeyProducts:
			data, err = encode(b.products.List())
		case KeySales:
			data, err = encode(b.sales.List())
		default:
			err = fmt.Errorf("unknown key %q", key)
		}
		if err == nil {
			err = b.store.Save(ctx, key, data)
		}
		if err != nil {
			b.log.Error("flush failed", "key", key, "err", err)
			if b.metrics != nil {
				b.metrics.PersistErrors.WithLabelValues(key).Inc()
			}
			errs = append(errs, fmt.Errorf("flush %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (b *Book) committed(ledger, op string, attrs ...any) {
	b.log.Debug("ledger mutation", append([]any{"ledger", ledger, "op", op}, attrs...)...)
	if b.metrics != nil {
		b.metrics.Mutations.WithLabelValues(ledger, op).Inc()
	}
}

func (b *Book) observeStock() {
	if b.metrics == nil {
		return
	}
	b.metrics.Shortages.Set(float64(len(shortages.Report(b.materials))))
	b.metrics.StockValue.Set(b.materials.TotalValue())
}

/* materials */

func (b *Book) Materials() []materials.Material {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.materials.List()
}

func (b *Book) StockValue() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.materials.TotalValue()
}

func (b *Book) AddMaterial(ctx context.Context, name, quantity, unitPrice string) (materials.Material, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, err := b.materials.Add(name, quantity, unitPrice)
	if err != nil {
		return materials.Material{}, err
	}
	b.committed(KeyMaterials, "add", "id", m.ID)
	b.observeStock()
	return m, b.flush(ctx, KeyMaterials)
}

func (b *Book) UpdateMaterial(ctx context.Context, id string, field materials.Field, raw string) (materials.Material, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	m, err := b.materials.Update(id, field, raw)
	if err != nil {
		return materials.Material{}, err
	}
	b.committed(KeyMaterials, "update", "id", id, "field", string(field))
	b.observeStock()
	return m, b.flush(ctx, KeyMaterials)
}

func (b *Book) RemoveMaterial(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.materials.Remove(id) {
		return domain.ErrNotFound
	}
	b.committed(KeyMaterials, "remove", "id", id)
	b.observeStock()
	return b.flush(ctx, KeyMaterials)
}

/* products */

func (b *Book) Products() []products.Priced {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.products.ListPriced()
}

func (b *Book) Product(id string) (products.Product, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.products.Get(id)
}

// CostOf себестоимость произвольного рецепта (например, черновика) по текущим ценам.
func (b *Book) CostOf(recipe []products.RecipeLine) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.products.CostOf(recipe)
}

// CommitProduct existingID == "" создаёт продукт, иначе правит существующий.
func (b *Book) CommitProduct(ctx context.Context, d products.Draft, existingID string) (products.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := b.products.Commit(d, existingID)
	if err != nil {
		return products.Product{}, err
	}
	op := "create"
	if existingID != "" {
		op = "edit"
	}
	b.committed(KeyProducts, op, "id", p.ID)
	return p, b.flush(ctx, KeyProducts)
}

func (b *Book) RemoveProduct(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.products.Remove(id) {
		return domain.ErrNotFound
	}
	b.committed(KeyProducts, "remove", "id", id)
	return b.flush(ctx, KeyProducts)
}

/* sales */

// RecordSale проводит продажу и списывает материалы. Материалы, которые только что
// ушли в минус, отправляются в Notifier уже после снятия блокировки.
func (b *Book) RecordSale(ctx context.Context, in sales.Input) (sales.Sale, error) {
	b.mu.Lock()
	before := shortages.Report(b.materials)
	s, err := b.sales.Record(in)
	if err != nil {
		b.mu.Unlock()
		return sales.Sale{}, err
	}
	b.committed(KeySales, "record", "id", s.ID, "product", s.ProductID, "qty", s.Quantity)
	if b.metrics != nil {
		b.metrics.SalesRecorded.Inc()
	}
	b.observeStock()
	newly := shortages.Newly(before, shortages.Report(b.materials))
	flushErr := b.flush(ctx, KeySales, KeyMaterials)
	b.mu.Unlock()

	if len(newly) > 0 && b.notifier != nil {
		if err := b.notifier.NotifyShortages(ctx, newly); err != nil {
			b.log.Warn("shortage notification failed", "err", err)
		}
	}
	return s, flushErr
}

// UndoLastSale отменяет последнюю продажу месяца с возвратом материалов.
func (b *Book) UndoLastSale(ctx context.Context, month string) (sales.Sale, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.sales.UndoLast(month)
	if err != nil {
		return sales.Sale{}, err
	}
	b.committed(KeySales, "undo", "id", s.ID, "month", month)
	if b.metrics != nil {
		b.metrics.SalesUndone.Inc()
	}
	b.observeStock()
	return s, b.flush(ctx, KeySales, KeyMaterials)
}

// RemoveSale удаляет продажу; материалы на склад не возвращаются.
func (b *Book) RemoveSale(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.sales.Remove(id) {
		return domain.ErrNotFound
	}
	b.committed(KeySales, "remove", "id", id)
	return b.flush(ctx, KeySales)
}

func (b *Book) UpdateSale(ctx context.Context, id string, field sales.Field, value string) (sales.Sale, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.sales.Update(id, field, value)
	if err != nil {
		return sales.Sale{}, err
	}
	b.committed(KeySales, "update", "id", id, "field", string(field))
	return s, b.flush(ctx, KeySales)
}

/* reports */

func (b *Book) MonthLines(month string) []sales.Line {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sales.Lines(b.sales.MonthView(month))
}

func (b *Book) MonthSummary(month string) sales.Summary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sales.Aggregate(b.sales.MonthView(month))
}

func (b *Book) MonthCSV(month string) string {
	return sales.CSV(b.MonthLines(month))
}

func (b *Book) WriteMonthXLSX(w io.Writer, month string) error {
	return sales.WriteXLSX(w, month, b.MonthLines(month))
}

func (b *Book) Shortages() []shortages.Item {
	b.mu.Lock()
	defer b.mu.Unlock()
	return shortages.Report(b.materials)
}
