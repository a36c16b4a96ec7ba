// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/nomadconnection/cryptobears/api"
)

type HTTPConfig struct {
	ReadTimeout       time.Duration `yaml:"readTimeout"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
	WriteTimeout      time.Duration `yaml:"writeTimeout"`
	IdleTimeout       time.Duration `yaml:"idleTimeout"`
}

func NewDefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Server maintains the HTTP router.
type Server struct {
	log             logging.Logger
	shutdownTimeout time.Duration

	router *mux.Router
	srv    *http.Server

	// Listener used to serve traffic
	listener net.Listener
}

func New(
	log logging.Logger,
	listener net.Listener,
	httpConfig HTTPConfig,
	allowedOrigins []string,
	shutdownTimeout time.Duration,
) *Server {
	router := mux.NewRouter()
	handler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(router)

	log.Info("API created",
		zap.Strings("allowedOrigins", allowedOrigins),
	)
	return &Server{
		log:             log,
		shutdownTimeout: shutdownTimeout,
		router:          router,
		srv: &http.Server{
			Handler:           handler,
			ReadTimeout:       httpConfig.ReadTimeout,
			ReadHeaderTimeout: httpConfig.ReadHeaderTimeout,
			WriteTimeout:      httpConfig.WriteTimeout,
			IdleTimeout:       httpConfig.IdleTimeout,
		},
		listener: listener,
	}
}

// AddRoute registers a compressed route to [handler].
func (s *Server) AddRoute(handler http.Handler, endpoint string) {
	s.log.Info("adding route",
		zap.String("endpoint", endpoint),
	)
	s.router.Handle(endpoint, compress(handler))
}

// AddStream registers an uncompressed route for websocket upgrades.
func (s *Server) AddStream(handler http.Handler, endpoint string) {
	s.log.Info("adding stream",
		zap.String("endpoint", endpoint),
	)
	s.router.Handle(endpoint, handler)
}

// AddAPIs builds every factory against [vm] and registers the handlers.
func AddAPIs[T any](s *Server, vm T, rpcs []api.HandlerFactory[T], streams []api.HandlerFactory[T]) error {
	for _, f := range rpcs {
		h, err := f.New(vm)
		if err != nil {
			return err
		}
		s.AddRoute(h.Handler, h.Path)
	}
	for _, f := range streams {
		h, err := f.New(vm)
		if err != nil {
			return err
		}
		s.AddStream(h.Handler, h.Path)
	}
	return nil
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Dispatch serves until Shutdown is called.
func (s *Server) Dispatch() error {
	s.log.Info("serving API", zap.Stringer("addr", s.listener.Addr()))
	return s.srv.Serve(s.listener)
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}
