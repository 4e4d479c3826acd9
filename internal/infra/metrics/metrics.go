package metrics

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Mutations     *prometheus.CounterVec // ledger, op
	PersistErrors *prometheus.CounterVec // key
	SalesRecorded prometheus.Counter
	SalesUndone   prometheus.Counter
	Shortages     prometheus.Gauge
	StockValue    prometheus.Gauge
}

// New регистрирует коллекторы в reg (prometheus.DefaultRegisterer для /metrics).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "costbook",
			Name:      "ledger_mutations_total",
			Help:      "Committed ledger mutations by ledger and operation.",
		}, []string{"ledger", "op"}),
		PersistErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "costbook",
			Name:      "persist_errors_total",
			Help:      "Failed ledger flushes by store key.",
		}, []string{"key"}),
		SalesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "costbook",
			Name:      "sales_recorded_total",
			Help:      "Sales recorded.",
		}),
		SalesUndone: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "costbook",
			Name:      "sales_undone_total",
			Help:      "Sales undone with stock replenishment.",
		}),
		Shortages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "costbook",
			Name:      "materials_in_shortage",
			Help:      "Materials with negative quantity on hand.",
		}),
		StockValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "costbook",
			Name:      "stock_value",
			Help:      "Sum of quantity*unit price over all materials.",
		}),
	}
	reg.MustRegister(m.Mutations, m.PersistErrors, m.SalesRecorded, m.SalesUndone, m.Shortages, m.StockValue)
	return m
}
