package money

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Spok95/costbook/internal/domain"
)

// Formatter денежный текст только для показа; расчёты работают с голыми числами.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
}

func New(locale, code string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", code, err)
	}
	return &Formatter{printer: message.NewPrinter(tag), unit: unit}, nil
}

func (f *Formatter) Format(v float64) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(domain.Round2(v))))
}

func (f *Formatter) Code() string { return f.unit.String() }
