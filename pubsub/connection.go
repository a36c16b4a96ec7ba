// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Connection is a single subscriber. Outbound messages are queued on [send]
// and written by writePump.
type Connection struct {
	s *Server

	conn *websocket.Conn
	send chan []byte

	l      sync.Mutex
	active bool
}

func newConnection(s *Server, conn *websocket.Conn) *Connection {
	return &Connection{
		s:    s,
		conn: conn,
		send: make(chan []byte, s.config.MaxPendingMessages),
	}
}

func (c *Connection) activate() {
	c.l.Lock()
	defer c.l.Unlock()

	c.active = true
}

// deactivate stops accepting messages and lets writePump drain and close.
func (c *Connection) deactivate() {
	c.l.Lock()
	defer c.l.Unlock()

	if !c.active {
		return
	}
	c.active = false
	close(c.send)
}

// Send queues [msg] and returns whether it was accepted. A full queue drops
// the message.
func (c *Connection) Send(msg []byte) bool {
	c.l.Lock()
	defer c.l.Unlock()

	if !c.active {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// readPump only serves control frames. Subscribers have nothing to say, so
// data frames are discarded.
func (c *Connection) readPump() {
	defer func() {
		c.s.removeConnection(c)
		c.deactivate()

		// close is called by both the writePump and the readPump so one of them
		// will always error
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.s.config.MaxReadMessageSize)
	// SetReadDeadline returns an error if the connection is corrupted
	if err := c.conn.SetReadDeadline(time.Now().Add(c.s.config.PongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.s.config.PongWait))
	})
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				c.s.log.Debug("unexpected close in websockets",
					zap.Error(err),
				)
			}
			return
		}
	}
}

// writePump is the only writer on the connection.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.s.config.PingPeriod())
	defer func() {
		c.s.removeConnection(c)
		c.deactivate()
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.s.config.WriteWait)); err != nil {
				c.s.log.Debug("closing the connection",
					zap.String("reason", "failed to set the write deadline"),
					zap.Error(err),
				)
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.s.log.Debug("closing the connection",
					zap.String("reason", "failed to write message"),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.s.config.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
