package inventory

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK       = "ok"
	resultInvalid  = "invalid"
	resultNotFound = "not_found"
	resultError    = "error"
)

type Metrics struct {
	Operations *prometheus.CounterVec
	LowStock   *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_operations_total",
				Help: "Inventory mutations by operation and result",
			},
			[]string{"op", "result"},
		),
		LowStock: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "inventory_low_stock_items",
				Help: "Items currently at or below their low-stock threshold",
			},
			[]string{"collection"},
		),
	}

	reg.MustRegister(m.Operations, m.LowStock)
	return m
}

func (m *Metrics) observeOp(op string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, resultOf(err)).Inc()
}

func (m *Metrics) observeDocument(d Document) {
	if m == nil {
		return
	}
	low := d.LowStock()
	m.LowStock.WithLabelValues("alcohols").Set(float64(len(low.Alcohols)))
	m.LowStock.WithLabelValues("shishas").Set(float64(len(low.Shishas)))
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, ErrInvalidInput):
		return resultInvalid
	case errors.Is(err, ErrNotFound):
		return resultNotFound
	default:
		return resultError
	}
}
