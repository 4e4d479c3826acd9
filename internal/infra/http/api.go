package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cast"

	"github.com/Spok95/costbook/internal/book"
	"github.com/Spok95/costbook/internal/domain"
	"github.com/Spok95/costbook/internal/domain/materials"
	"github.com/Spok95/costbook/internal/domain/products"
	"github.com/Spok95/costbook/internal/domain/sales"
	"github.com/Spok95/costbook/internal/infra/money"
)

const maxBody = 1 << 20

// API JSON-обёртка над книгой. Вся логика в book/domain, здесь только разбор запроса и коды ответа.
type API struct {
	book  *book.Book
	money *money.Formatter
	log   *slog.Logger
}

func NewAPI(b *book.Book, m *money.Formatter, log *slog.Logger) *API {
	return &API{book: b, money: m, log: log}
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/materials", a.listMaterials)
	mux.HandleFunc("POST /api/materials", a.addMaterial)
	mux.HandleFunc("PATCH /api/materials/{id}", a.updateMaterial)
	mux.HandleFunc("DELETE /api/materials/{id}", a.removeMaterial)

	mux.HandleFunc("GET /api/products", a.listProducts)
	mux.HandleFunc("POST /api/products", a.createProduct)
	mux.HandleFunc("PUT /api/products/{id}", a.editProduct)
	mux.HandleFunc("DELETE /api/products/{id}", a.removeProduct)

	mux.HandleFunc("POST /api/sales", a.recordSale)
	mux.HandleFunc("POST /api/sales/undo", a.undoSale)
	mux.HandleFunc("PATCH /api/sales/{id}", a.updateSale)
	mux.HandleFunc("DELETE /api/sales/{id}", a.removeSale)

	mux.HandleFunc("GET /api/reports/{month}/sales", a.monthSales)
	mux.HandleFunc("GET /api/reports/{month}/summary", a.monthSummary)
	mux.HandleFunc("GET /api/reports/{month}/sales.csv", a.monthCSV)
	mux.HandleFunc("GET /api/reports/{month}/sales.xlsx", a.monthXLSX)

	mux.HandleFunc("GET /api/shortages", a.shortages)
}

// flex поле ввода: строка или число. Разбирает домен, здесь только приводим к тексту.
type flex string

func (f *flex) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flex(cast.ToString(v))
	return nil
}

type fieldEdit struct {
	Field string `json:"field"`
	Value flex   `json:"value"`
}

/* materials */

type materialReq struct {
	Name      flex `json:"name"`
	Quantity  flex `json:"quantity"`
	UnitPrice flex `json:"unitPrice"`
}

func (a *API) listMaterials(w http.ResponseWriter, _ *http.Request) {
	total := a.book.StockValue()
	writeJSON(w, http.StatusOK, map[string]any{
		"items":        a.book.Materials(),
		"totalValue":   domain.Round2(total),
		"totalDisplay": a.money.Format(total),
	})
}

func (a *API) addMaterial(w http.ResponseWriter, r *http.Request) {
	var req materialReq
	if !a.decode(w, r, &req) {
		return
	}
	m, err := a.book.AddMaterial(r.Context(), string(req.Name), string(req.Quantity), string(req.UnitPrice))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (a *API) updateMaterial(w http.ResponseWriter, r *http.Request) {
	var req fieldEdit
	if !a.decode(w, r, &req) {
		return
	}
	m, err := a.book.UpdateMaterial(r.Context(), r.PathValue("id"), materials.Field(req.Field), string(req.Value))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *API) removeMaterial(w http.ResponseWriter, r *http.Request) {
	if err := a.book.RemoveMaterial(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/* products */

type draftLineReq struct {
	MaterialID flex `json:"materialId"`
	Quantity   flex `json:"quantity"`
}

type draftReq struct {
	Name         flex           `json:"name"`
	SalePrice    flex           `json:"salePrice"`
	ProfitMargin flex           `json:"profitMargin"`
	Recipe       []draftLineReq `json:"recipe"`
}

func (d draftReq) draft() products.Draft {
	out := products.Draft{
		Name:         string(d.Name),
		SalePrice:    string(d.SalePrice),
		ProfitMargin: string(d.ProfitMargin),
	}
	for _, l := range d.Recipe {
		out.Recipe = append(out.Recipe, products.DraftLine{MaterialID: string(l.MaterialID), Quantity: string(l.Quantity)})
	}
	return out
}

func (a *API) listProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.book.Products())
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	a.commitProduct(w, r, "", http.StatusCreated)
}

func (a *API) editProduct(w http.ResponseWriter, r *http.Request) {
	a.commitProduct(w, r, r.PathValue("id"), http.StatusOK)
}

func (a *API) commitProduct(w http.ResponseWriter, r *http.Request, existingID string, status int) {
	var req draftReq
	if !a.decode(w, r, &req) {
		return
	}
	p, err := a.book.CommitProduct(r.Context(), req.draft(), existingID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, status, p)
}

func (a *API) removeProduct(w http.ResponseWriter, r *http.Request) {
	if err := a.book.RemoveProduct(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/* sales */

type saleReq struct {
	ProductID    flex   `json:"productId"`
	Quantity     flex   `json:"quantity"`
	Place        string `json:"place"`
	CustomerName string `json:"customerName"`
	DateISO      string `json:"dateISO"`
	Time         string `json:"time"`
	Month        string `json:"month"`
}

func (a *API) recordSale(w http.ResponseWriter, r *http.Request) {
	var req saleReq
	if !a.decode(w, r, &req) {
		return
	}
	s, err := a.book.RecordSale(r.Context(), sales.Input{
		ProductID:    string(req.ProductID),
		Quantity:     string(req.Quantity),
		Place:        req.Place,
		CustomerName: req.CustomerName,
		DateISO:      req.DateISO,
		Time:         req.Time,
		Month:        req.Month,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// undoSale ?month=YYYY-MM, по умолчанию текущий месяц.
func (a *API) undoSale(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = a.book.CurrentMonth()
	} else if !validMonth(month) {
		a.fail(w, r, domain.Invalid("month", "must be YYYY-MM"))
		return
	}
	s, err := a.book.UndoLastSale(r.Context(), month)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) updateSale(w http.ResponseWriter, r *http.Request) {
	var req fieldEdit
	if !a.decode(w, r, &req) {
		return
	}
	s, err := a.book.UpdateSale(r.Context(), r.PathValue("id"), sales.Field(req.Field), string(req.Value))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (a *API) removeSale(w http.ResponseWriter, r *http.Request) {
	if err := a.book.RemoveSale(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/* reports */

func (a *API) month(w http.ResponseWriter, r *http.Request) (string, bool) {
	month := r.PathValue("month")
	if !validMonth(month) {
		a.fail(w, r, domain.Invalid("month", "must be YYYY-MM"))
		return "", false
	}
	return month, true
}

func (a *API) monthSales(w http.ResponseWriter, r *http.Request) {
	month, ok := a.month(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a.book.MonthLines(month))
}

func (a *API) monthSummary(w http.ResponseWriter, r *http.Request) {
	month, ok := a.month(w, r)
	if !ok {
		return
	}
	sum := a.book.MonthSummary(month)
	writeJSON(w, http.StatusOK, map[string]any{
		"month":   month,
		"summary": sum,
		"display": map[string]string{
			"cost":      a.money.Format(sum.Cost),
			"revenue":   a.money.Format(sum.Revenue),
			"profit":    a.money.Format(sum.Profit),
			"marginPct": fmt.Sprintf("%s%%", domain.Fixed2(sum.MarginPct)),
		},
	})
}

func (a *API) monthCSV(w http.ResponseWriter, r *http.Request) {
	month, ok := a.month(w, r)
	if !ok {
		return
	}
	attachment(w, "text/csv; charset=utf-8", sales.CSVFileName(month))
	_, _ = w.Write([]byte(a.book.MonthCSV(month)))
}

func (a *API) monthXLSX(w http.ResponseWriter, r *http.Request) {
	month, ok := a.month(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := a.book.WriteMonthXLSX(&buf, month); err != nil {
		a.fail(w, r, err)
		return
	}
	attachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", sales.XLSXFileName(month))
	_, _ = w.Write(buf.Bytes())
}

func (a *API) shortages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.book.Shortages())
}

/* helpers */

func validMonth(m string) bool {
	_, err := time.Parse("2006-01", m)
	return err == nil
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.fail(w, r, domain.Invalid("body", "invalid json"))
		return false
	}
	return true
}

// fail переводит ошибку домена в HTTP-код.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error(), "field": ve.Field, "reason": ve.Reason})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, sales.ErrNothingToUndo):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		a.log.Error("api request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
