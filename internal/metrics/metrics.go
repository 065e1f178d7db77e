package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/mcoot/jukebox/internal/model"
)

// Metrics holds the jukebox counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	PlayDecisions  *prometheus.CounterVec
	DailyResets    prometheus.Counter
	CountersReset  prometheus.Counter
	SnapshotOps    *prometheus.CounterVec
	Authentication *prometheus.CounterVec
}

// New creates the counters and registers them with reg (skipped when reg is nil)
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PlayDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jukebox_play_decisions_total",
				Help: "Play requests by authorization decision",
			},
			[]string{"decision"},
		),
		DailyResets: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jukebox_daily_resets_total",
				Help: "Day boundaries that triggered a counter reset",
			},
		),
		CountersReset: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jukebox_counters_reset_total",
				Help: "Accounts and tracks zeroed by daily resets",
			},
		),
		SnapshotOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jukebox_snapshot_operations_total",
				Help: "Snapshot and restore operations by store and result",
			},
			[]string{"store", "operation", "result"},
		),
		Authentication: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jukebox_authentications_total",
				Help: "Authentication attempts by result",
			},
			[]string{"result"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.PlayDecisions,
			m.DailyResets,
			m.CountersReset,
			m.SnapshotOps,
			m.Authentication,
		)
	}
	return m
}

// ObserveDecision counts one authorization outcome
func (m *Metrics) ObserveDecision(d model.Decision) {
	if m == nil {
		return
	}
	m.PlayDecisions.WithLabelValues(string(d)).Inc()
}

// ObserveReset counts one broadcast and the subscribers it reached
func (m *Metrics) ObserveReset(subscribers int) {
	if m == nil {
		return
	}
	m.DailyResets.Inc()
	m.CountersReset.Add(float64(subscribers))
}

// ObserveSnapshot counts one snapshot or restore of a named store
func (m *Metrics) ObserveSnapshot(store, operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SnapshotOps.WithLabelValues(store, operation, result).Inc()
}

// ObserveAuthentication counts one login attempt
func (m *Metrics) ObserveAuthentication(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.Authentication.WithLabelValues(result).Inc()
}

// Sample is a single counter value with its labels flattened
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Collect gathers every counter from g, sorted by name
func Collect(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var samples []Sample
	for _, family := range families {
		if family.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := make(map[string]string, len(metric.GetLabel()))
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			samples = append(samples, Sample{
				Name:   family.GetName(),
				Labels: labels,
				Value:  metric.GetCounter().GetValue(),
			})
		}
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Name < samples[j].Name
	})
	return samples, nil
}
