// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"net/http"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type ServerConfig struct {
	ReadBufferSize     int           `yaml:"readBufferSize"`
	WriteBufferSize    int           `yaml:"writeBufferSize"`
	WriteWait          time.Duration `yaml:"writeWait"`
	PongWait           time.Duration `yaml:"pongWait"`
	MaxReadMessageSize int64         `yaml:"maxReadMessageSize"`
	MaxPendingMessages int           `yaml:"maxPendingMessages"`
}

func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadBufferSize:     readBufferSize,
		WriteBufferSize:    writeBufferSize,
		WriteWait:          writeWait,
		PongWait:           pongWait,
		MaxReadMessageSize: maxReadMessageSize,
		MaxPendingMessages: maxPendingMessages,
	}
}

// PingPeriod must be less than PongWait.
func (c ServerConfig) PingPeriod() time.Duration {
	return (c.PongWait * 9) / 10
}

// Server fans out published messages to every connected websocket client.
type Server struct {
	log      logging.Logger
	config   ServerConfig
	upgrader websocket.Upgrader

	lock   sync.Mutex
	closed bool
	conns  *Connections
}

func New(log logging.Logger, config ServerConfig) *Server {
	return &Server{
		log:    log,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		conns: NewConnections(),
	}
}

// ServeHTTP upgrades the request and registers the connection.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("failed to upgrade",
			zap.Error(err),
		)
		return
	}
	conn := newConnection(s, wsConn)

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		_ = wsConn.Close()
		return
	}
	conn.activate()
	s.conns.Add(conn)
	go conn.writePump()
	go conn.readPump()
}

// Publish sends [msg] to every connection. It returns how many
// connections accepted it.
func (s *Server) Publish(msg []byte) int {
	sent := 0
	for _, conn := range s.conns.Conns() {
		if conn.Send(msg) {
			sent++
			continue
		}
		s.log.Debug("dropping message to subscribed connection due to too many pending messages")
	}
	return sent
}

func (s *Server) Connections() int {
	return s.conns.Len()
}

func (s *Server) removeConnection(conn *Connection) {
	s.conns.Remove(conn)
}

// Close disconnects every client and refuses new ones.
func (s *Server) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.closed = true
	for _, conn := range s.conns.Conns() {
		s.conns.Remove(conn)
		conn.deactivate()
	}
	return nil
}
