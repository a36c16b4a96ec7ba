// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	txsSubmitted    prometheus.Counter
	txsSucceeded    prometheus.Counter
	txsFailed       prometheus.Counter
	txsRejected     prometheus.Counter
	stateChanges    prometheus.Counter
	contractsLive   prometheus.Counter
	bearsMinted     prometheus.Counter
	mealsServed     prometheus.Counter
	queries         prometheus.Counter
	height          prometheus.Gauge
	subscribers     prometheus.Gauge
	txExecute       metric.Averager
	txCommit        metric.Averager
	failuresPerCode *prometheus.CounterVec
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vm",
		Name:      name,
		Help:      help,
	})
}

func newMetrics() (*prometheus.Registry, *Metrics, error) {
	r := prometheus.NewRegistry()

	txExecute, err := metric.NewAverager(
		"",
		"vm_tx_execute",
		"time spent executing transactions",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	txCommit, err := metric.NewAverager(
		"",
		"vm_tx_commit",
		"time spent writing transaction changes to disk",
		r,
	)
	if err != nil {
		return nil, nil, err
	}

	m := &Metrics{
		txsSubmitted:  newCounter("txs_submitted", "number of txs submitted"),
		txsSucceeded:  newCounter("txs_succeeded", "number of txs executed with success status"),
		txsFailed:     newCounter("txs_failed", "number of txs executed with failure status"),
		txsRejected:   newCounter("txs_rejected", "number of txs rejected before execution"),
		stateChanges:  newCounter("state_changes", "number of state changes written"),
		contractsLive: newCounter("contracts_deployed", "number of contracts installed"),
		bearsMinted:   newCounter("bears_minted", "number of tokens minted"),
		mealsServed:   newCounter("meals_served", "number of successful happy meals"),
		queries:       newCounter("queries", "number of read-only calls served"),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vm",
			Name:      "height",
			Help:      "number of executed transactions",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vm",
			Name:      "subscribers",
			Help:      "number of result subscribers",
		}),
		txExecute: txExecute,
		txCommit:  txCommit,
		failuresPerCode: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vm",
			Name:      "failures",
			Help:      "number of failed txs by failure code",
		}, []string{"code"}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsSubmitted),
		r.Register(m.txsSucceeded),
		r.Register(m.txsFailed),
		r.Register(m.txsRejected),
		r.Register(m.stateChanges),
		r.Register(m.contractsLive),
		r.Register(m.bearsMinted),
		r.Register(m.mealsServed),
		r.Register(m.queries),
		r.Register(m.height),
		r.Register(m.subscribers),
		r.Register(m.failuresPerCode),
	)
	return r, m, errs.Err
}
