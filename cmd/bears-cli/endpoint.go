// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomadconnection/cryptobears/codec"
)

var endpointCmd = &cobra.Command{
	Use:   "endpoint",
	Short: "Manage endpoint",
	RunE: func(cmd *cobra.Command, _ []string) error {
		endpoint, err := getConfigValue(cmd, "endpoint", true)
		if err != nil {
			return fmt.Errorf("failed to get endpoint: %w", err)
		}
		return printValue(cmd, textResponse{Value: endpoint})
	},
}

var endpointSetCmd = &cobra.Command{
	Use:   "set [uri]",
	Short: "Set the endpoint URI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setConfigValue("endpoint", args[0]); err != nil {
			return fmt.Errorf("failed to save endpoint: %w", err)
		}
		return printValue(cmd, textResponse{Value: args[0]})
	},
}

var endpointPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping the endpoint",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}
		ok, err := client.Ping(context.Background())
		if err != nil {
			return fmt.Errorf("failed to ping: %w", err)
		}
		if !ok {
			return errors.New("endpoint is not healthy")
		}
		height, err := client.Height(context.Background())
		if err != nil {
			return err
		}
		return printValue(cmd, textResponse{Value: fmt.Sprintf("ok at height %d", height)})
	},
}

var senderCmd = &cobra.Command{
	Use:   "sender [address]",
	Short: "Show or set the default sender address",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			addr, err := getSender(cmd, true)
			if err != nil {
				return err
			}
			return printValue(cmd, textResponse{Value: addr.String()})
		}
		addr, err := codec.ParseAddress(args[0])
		if err != nil {
			return err
		}
		if !addr.IsEOA() {
			return fmt.Errorf("sender %s is not an account", addr)
		}
		if err := setConfigValue("from", addr.String()); err != nil {
			return fmt.Errorf("failed to save sender: %w", err)
		}
		return printValue(cmd, textResponse{Value: addr.String()})
	},
}

type textResponse struct {
	Value string `json:"value"`
}

func (r textResponse) String() string {
	return r.Value
}

func init() {
	endpointCmd.AddCommand(endpointSetCmd, endpointPingCmd)
	rootCmd.AddCommand(endpointCmd, senderCmd)
}
