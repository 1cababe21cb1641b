// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package metrics

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tokenlaunch"

// Stages of token issuance.
const (
	StagePreflight = "preflight"
	StageFee       = "fee"
	StageDerive    = "derive"
	StageCreate    = "create"
)

// Outcomes of a stage.
const (
	OutcomeOK              = "ok"
	OutcomeInvalid         = "invalid"
	OutcomeInsufficient    = "insufficient"
	OutcomeUserRejected    = "user_rejected"
	OutcomeNetworkTimeout  = "network_timeout"
	OutcomeProgramRejected = "program_rejected"
	OutcomeFailed          = "failed"
)

// Issuance counts token issuance stage outcomes and charged fees.
// Nil *Issuance is valid and records nothing.
type Issuance struct {
	stages      *prometheus.CounterVec
	feeLamports prometheus.Counter
}

// NewIssuance is a constructor for Issuance, registers collectors on registerer.
func NewIssuance(registerer prometheus.Registerer) (*Issuance, error) {
	m := &Issuance{
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "stage_total",
			Help:      "Token issuance stage outcomes.",
		}, []string{"stage", "outcome"}),
		feeLamports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "fee_lamports_total",
			Help:      "Service fees confirmed on the ledger, in lamports.",
		}),
	}

	for _, collector := range []prometheus.Collector{m.stages, m.feeLamports} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Stage records stage outcome.
func (m *Issuance) Stage(stage, outcome string) {
	if m == nil {
		return
	}

	m.stages.WithLabelValues(stage, outcome).Inc()
}

// FeeCharged records confirmed service fee.
func (m *Issuance) FeeCharged(lamports uint64) {
	if m == nil {
		return
	}

	m.feeLamports.Add(float64(lamports))
}

// Snapshot returns counter values gathered from gatherer, keyed by metric name
// followed by label pairs sorted by label name, e.g. `tokenlaunch_issuance_stage_total{outcome=ok,stage=fee}`.
func Snapshot(gatherer prometheus.Gatherer) (map[string]float64, error) {
	families, err := gatherer.Gather()
	if err != nil {
		return nil, err
	}

	values := make(map[string]float64)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if metric.GetCounter() == nil {
				continue
			}

			pairs := make([]string, 0, len(metric.GetLabel()))
			for _, label := range metric.GetLabel() {
				pairs = append(pairs, label.GetName()+"="+label.GetValue())
			}
			sort.Strings(pairs)

			key := family.GetName()
			if len(pairs) > 0 {
				key += "{" + strings.Join(pairs, ",") + "}"
			}
			values[key] = metric.GetCounter().GetValue()
		}
	}

	return values, nil
}
