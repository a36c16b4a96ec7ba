// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/nomadconnection/cryptobears/chain"
)

type WebSocketClient struct {
	conn *websocket.Conn
}

// NewWebSocketClient dials the result stream of the node at [uri].
func NewWebSocketClient(ctx context.Context, uri string) (*WebSocketClient, error) {
	uri = strings.TrimSuffix(uri, "/")
	uri = strings.Replace(uri, "http://", "ws://", 1)
	uri = strings.Replace(uri, "https://", "wss://", 1)
	uri += Endpoint
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, uri, nil)
	if err != nil {
		return nil, err
	}
	_ = resp.Body.Close()
	return &WebSocketClient{conn: conn}, nil
}

// ListenResult blocks until the next committed result arrives.
func (c *WebSocketClient) ListenResult() (*chain.Result, error) {
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	result := new(chain.Result)
	if err := json.Unmarshal(msg, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *WebSocketClient) Close() error {
	return c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
