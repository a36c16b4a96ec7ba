// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package requester

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/rpc/v2/json2"
)

const defaultTimeout = 30 * time.Second

var ErrBadStatus = errors.New("received non-ok status")

// EndpointRequester sends JSON-RPC 2.0 requests to a single endpoint. Method
// names are prefixed with the service name.
type EndpointRequester struct {
	cli  *http.Client
	uri  string
	base string
}

func New(uri, base string) *EndpointRequester {
	return &EndpointRequester{
		cli:  &http.Client{Timeout: defaultTimeout},
		uri:  uri,
		base: base,
	}
}

func (e *EndpointRequester) SendRequest(
	ctx context.Context,
	method string,
	params interface{},
	reply interface{},
) error {
	uri, err := url.Parse(e.uri)
	if err != nil {
		return err
	}
	if params == nil {
		params = struct{}{}
	}
	requestBody, err := json2.EncodeClientRequest(e.base+"."+method, params)
	if err != nil {
		return fmt.Errorf("failed to encode client params: %w", err)
	}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		uri.String(),
		bytes.NewBuffer(requestBody),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.cli.Do(req)
	if err != nil {
		return fmt.Errorf("failed to issue request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain the body so the connection can be reused.
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %d %s", ErrBadStatus, resp.StatusCode, bytes.TrimSpace(body))
	}
	if err := json2.DecodeClientResponse(resp.Body, reply); err != nil {
		return fmt.Errorf("failed to decode client response: %w", err)
	}
	return nil
}
