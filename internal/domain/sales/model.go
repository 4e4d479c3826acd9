package sales

import "errors"

var ErrNothingToUndo = errors.New("nothing to undo")

// Sale продажа. Себестоимость и цена здесь не хранятся: они пересчитываются
// по текущему каталогу при каждом чтении. Фиксируются только количество и реквизиты.
type Sale struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"productId"`
	Quantity     float64 `json:"quantity"`
	Place        string  `json:"place"`
	CustomerName string  `json:"customerName"`
	DateISO      string  `json:"dateISO"` // YYYY-MM-DD
	Time         string  `json:"time"`    // HH:MM или пусто
	ColorTag     string  `json:"colorTag"`
	Notes        string  `json:"notes"`
}

// Input сырые поля формы быстрой продажи.
// Month выбранный месяц (YYYY-MM); если задан, дата обязана в него попадать.
type Input struct {
	ProductID    string `json:"productId"`
	Quantity     string `json:"quantity"`
	Place        string `json:"place"`
	CustomerName string `json:"customerName"`
	DateISO      string `json:"dateISO"`
	Time         string `json:"time"`
	Month        string `json:"month"`
}

type Field string

const (
	FieldQuantity     Field = "quantity"
	FieldPlace        Field = "place"
	FieldTime         Field = "time"
	FieldDate         Field = "dateISO"
	FieldColorTag     Field = "colorTag"
	FieldNotes        Field = "notes"
	FieldCustomerName Field = "customerName"
)

// PresetColors быстрые цвета разметки строк.
var PresetColors = []string{"#FFCDD2", "#FFF59D", "#B2EBF2"}

// Line строка месячного отчёта: продажа + цифры по текущему каталогу.
type Line struct {
	Sale
	ProductName string  `json:"productName"`
	Known       bool    `json:"known"`
	UnitCost    float64 `json:"unitCost"`
	UnitProfit  float64 `json:"unitProfit"`
	UnitPrice   float64 `json:"unitPrice"`
	Subtotal    float64 `json:"subtotal"`
}

// Summary итоги месяца.
type Summary struct {
	Cost      float64 `json:"cost"`
	Revenue   float64 `json:"revenue"`
	Profit    float64 `json:"profit"`
	MarginPct float64 `json:"marginPct"`
}
