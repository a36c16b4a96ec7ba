// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const MetricsEndpoint = "/metrics"

// compress gzips responses when the client accepts it. Streaming routes must
// not be wrapped since the upgrade needs the raw connection.
func compress(h http.Handler) http.Handler {
	return gziphandler.GzipHandler(h)
}

// NewMetricsHandler serves every metric of [gatherers].
func NewMetricsHandler(gatherers ...prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(
		prometheus.Gatherers(gatherers),
		promhttp.HandlerOpts{},
	)
}
