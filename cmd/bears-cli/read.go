// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nomadconnection/cryptobears/api/jsonrpc"
	"github.com/nomadconnection/cryptobears/api/ws"
	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/utils"
)

var queryCmd = &cobra.Command{
	Use:   "query [contract] [method]",
	Short: "Run a read-only contract method",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}
		from, err := getSender(cmd, false)
		if err != nil {
			return err
		}
		to, err := codec.ParseAddress(args[0])
		if err != nil {
			return err
		}
		raw, err := cmd.Flags().GetStringArray("param")
		if err != nil {
			return err
		}
		params, err := parseParams(raw)
		if err != nil {
			return err
		}
		out, err := client.Call(context.Background(), from, to, args[1], params)
		if err != nil {
			return fmt.Errorf("call failed: %w", err)
		}
		return printValue(cmd, textResponse{Value: out})
	},
}

var resultCmd = &cobra.Command{
	Use:   "result [txHash]",
	Short: "Show the result of a transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}
		txHash, err := codec.ParseHash(args[0])
		if err != nil {
			return err
		}
		result, err := client.GetTransactionResult(context.Background(), txHash)
		if err != nil {
			return err
		}
		return printValue(cmd, resultResponse{result})
	},
}

type balanceResponse struct {
	Address codec.Address `json:"address"`
	Balance codec.Amount  `json:"balance"`
}

func (r balanceResponse) String() string {
	return fmt.Sprintf("%s: %s ICX", r.Address, utils.FormatBalance(r.Balance))
}

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show the ICX balance of an address, the sender by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}
		var addr codec.Address
		if len(args) > 0 {
			addr, err = codec.ParseAddress(args[0])
		} else {
			addr, err = getSender(cmd, true)
		}
		if err != nil {
			return err
		}
		bal, err := client.GetBalance(context.Background(), addr)
		if err != nil {
			return err
		}
		return printValue(cmd, balanceResponse{Address: addr, Balance: bal})
	},
}

type apiResponse struct {
	Methods []*jsonrpc.MethodAPI `json:"methods"`
}

func (r apiResponse) String() string {
	var b strings.Builder
	for _, m := range r.Methods {
		inputs := make([]string, 0, len(m.Inputs))
		for _, in := range m.Inputs {
			s := in.Name + " " + in.Type
			if in.Optional {
				s += "?"
			}
			inputs = append(inputs, s)
		}
		var flags []string
		if m.ReadOnly {
			flags = append(flags, "readonly")
		}
		if m.Payable {
			flags = append(flags, "payable")
		}
		fmt.Fprintf(&b, "%s(%s) %v %s\n", color.CyanString(m.Name), strings.Join(inputs, ", "), m.Outputs, strings.Join(flags, " "))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

var apiCmd = &cobra.Command{
	Use:   "api [contract]",
	Short: "List the methods of a contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd)
		if err != nil {
			return err
		}
		addr, err := codec.ParseAddress(args[0])
		if err != nil {
			return err
		}
		methods, err := client.GetScoreAPI(context.Background(), addr)
		if err != nil {
			return err
		}
		return printValue(cmd, apiResponse{Methods: methods})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream committed transaction results",
	RunE: func(cmd *cobra.Command, _ []string) error {
		endpoint, err := getConfigValue(cmd, "endpoint", true)
		if err != nil {
			return err
		}
		cli, err := ws.NewWebSocketClient(context.Background(), endpoint)
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		defer cli.Close()

		utils.Outf("{{yellow}}watching %s{{/}}\n", endpoint)
		for {
			result, err := cli.ListenResult()
			if err != nil {
				return err
			}
			if err := printValue(cmd, resultResponse{result}); err != nil {
				return err
			}
		}
	},
}

func init() {
	queryCmd.Flags().StringArrayP("param", "p", nil, "Parameter as key=value, repeatable")
	rootCmd.AddCommand(queryCmd, resultCmd, balanceCmd, apiCmd, watchCmd)
}
