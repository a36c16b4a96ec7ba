// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace       = "store"
	metricsInterval = 10 * time.Second
)

type metrics struct {
	delayStart time.Time
	writeStall metric.Averager
	getLatency metric.Averager

	compactions       *prometheus.CounterVec
	activeCompactions prometheus.Gauge

	tombstoneCount    prometheus.Gauge
	obsoleteTableSize prometheus.Gauge
	obsoleteWALSize   prometheus.Gauge
	diskUsage         prometheus.Gauge
}

func newGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	writeStall, err := metric.NewAverager(
		"",
		namespace+"_write_stall",
		"time spent waiting for disk write",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	getLatency, err := metric.NewAverager(
		"",
		namespace+"_read_latency",
		"time spent waiting for db get",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	m := &metrics{
		writeStall: writeStall,
		getLatency: getLatency,
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compactions",
			Help:      "number of compactions by input level",
		}, []string{"level"}),
		activeCompactions: newGauge("active_compactions", "number of active compactions"),
		tombstoneCount:    newGauge("tombstone_count", "approximate count of internal tombstones"),
		obsoleteTableSize: newGauge("obsolete_table_size", "number of bytes present in tables no longer referenced by the db"),
		obsoleteWALSize:   newGauge("obsolete_wal_size", "number of bytes present in WAL no longer needed by the db"),
		diskUsage:         newGauge("disk_usage", "total disk space used by the db"),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.compactions),
		r.Register(m.activeCompactions),
		r.Register(m.tombstoneCount),
		r.Register(m.obsoleteTableSize),
		r.Register(m.obsoleteWALSize),
		r.Register(m.diskUsage),
	)
	return r, m, errs.Err
}

func (db *Database) onCompactionBegin(info pebble.CompactionInfo) {
	db.metrics.activeCompactions.Inc()
	level := "l1+"
	if len(info.Input) > 0 && info.Input[0].Level == 0 {
		level = "l0"
	}
	db.metrics.compactions.WithLabelValues(level).Inc()
}

func (db *Database) onCompactionEnd(pebble.CompactionInfo) {
	db.metrics.activeCompactions.Dec()
}

func (db *Database) onWriteStallBegin(pebble.WriteStallBeginInfo) {
	db.metrics.delayStart = time.Now()
}

func (db *Database) onWriteStallEnd() {
	db.metrics.writeStall.Observe(float64(time.Since(db.metrics.delayStart)))
}

func (db *Database) collectMetrics() {
	t := time.NewTicker(metricsInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			m := db.db.Metrics()
			db.metrics.tombstoneCount.Set(float64(m.Keys.TombstoneCount))
			db.metrics.obsoleteTableSize.Set(float64(m.Table.ObsoleteSize))
			db.metrics.obsoleteWALSize.Set(float64(m.WAL.ObsoletePhysicalSize))
			db.metrics.diskUsage.Set(float64(m.DiskSpaceUsage()))
		case <-db.closing:
			return
		}
	}
}
