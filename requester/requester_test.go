// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package requester

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendRequest(t *testing.T) {
	require := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
			ID     json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"result":  map[string]any{"method": req.Method},
			"id":      req.ID,
		})
	}))
	defer srv.Close()

	var reply struct {
		Method string `json:"method"`
	}
	r := New(srv.URL, "bears")
	require.NoError(r.SendRequest(context.Background(), "ping", nil, &reply))
	require.Equal("bears.ping", reply.Method)
}

func TestSendRequestBadStatus(t *testing.T) {
	require := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := New(srv.URL, "bears")
	err := r.SendRequest(context.Background(), "ping", nil, &struct{}{})
	require.ErrorIs(err, ErrBadStatus)
}
