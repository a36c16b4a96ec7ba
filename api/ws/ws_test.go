// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nomadconnection/cryptobears/api"
	"github.com/nomadconnection/cryptobears/chain"
	"github.com/nomadconnection/cryptobears/codec"
)

func TestResultStream(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	results := make(chan *chain.Result, 1)
	vm := api.NewMockVM(ctrl)
	vm.EXPECT().Logger().Return(logging.NoLog{}).AnyTimes()
	vm.EXPECT().Subscribe().Return((<-chan *chain.Result)(results), func() {})

	handler, err := NewWebSocketServerFactory().New(vm)
	require.NoError(err)
	router := mux.NewRouter()
	router.Handle(handler.Path, handler.Handler)
	srv := httptest.NewServer(router)
	defer srv.Close()

	cli, err := NewWebSocketClient(ctx, srv.URL)
	require.NoError(err)

	published := &chain.Result{
		TxHash:    codec.Hash(ids.GenerateTestID()),
		Height:    3,
		Status:    chain.StatusSuccess,
		EventLogs: []*chain.EventLog{},
	}
	// The connection registers asynchronously, so keep publishing until one
	// arrives.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case results <- published:
				default:
				}
			}
		}
	}()

	got, err := cli.ListenResult()
	require.NoError(err)
	require.Equal(published.TxHash, got.TxHash)
	require.Equal(published.Height, got.Height)
	require.True(got.Success())
	require.NoError(cli.Close())
}

func TestUnknownPath(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)

	results := make(chan *chain.Result)
	close(results)
	vm := api.NewMockVM(ctrl)
	vm.EXPECT().Logger().Return(logging.NoLog{}).AnyTimes()
	vm.EXPECT().Subscribe().Return((<-chan *chain.Result)(results), func() {})

	handler, err := NewWebSocketServerFactory().New(vm)
	require.NoError(err)
	router := mux.NewRouter()
	router.Handle(handler.Path, handler.Handler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	require.Equal(http.StatusNotFound, rec.Code)
}
