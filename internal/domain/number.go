package domain

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxAmount предел модуля любого количества или цены: произведения и суммы остаются конечными.
const MaxAmount = 1e12

// Usable конечное число в пределах MaxAmount.
func Usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) <= MaxAmount
}

// ParseNumber разбирает число из пользовательского ввода (пробелы по краям игнорируются).
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !Usable(v) {
		return 0, false
	}
	return v, true
}

// NumberOrZero мягкое приведение для правки "в ячейке": мусор => 0.
func NumberOrZero(raw string) float64 {
	v, _ := ParseNumber(raw)
	return v
}

// Round2 округляет до копеек. NaN и бесконечности дают 0.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Fixed2 число строкой ровно с двумя знаками после точки, без валюты.
func Fixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// AddExact сумма в десятичной арифметике, чтобы q + d - d == q.
func AddExact(q, d float64) float64 {
	return decimal.NewFromFloat(q).Add(decimal.NewFromFloat(d)).InexactFloat64()
}

// MulExact произведение в десятичной арифметике (0.7*3 == 2.1).
func MulExact(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).InexactFloat64()
}

func NewID() string { return uuid.NewString() }
