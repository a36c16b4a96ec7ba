// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nomadconnection/cryptobears/chain"
	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/utils"
)

// parseParams turns repeated key=value flags into call params.
func parseParams(raw []string) (chain.Params, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := chain.Params{}
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || len(k) == 0 {
			return nil, fmt.Errorf("param %q is not key=value", kv)
		}
		if _, dup := params[k]; dup {
			return nil, fmt.Errorf("param %q given twice", k)
		}
		params[k] = v
	}
	return params, nil
}

func txFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("param", "p", nil, "Parameter as key=value, repeatable")
	cmd.Flags().String("value", "0", "ICX to attach, e.g. 1.5")
}

func readTxFlags(cmd *cobra.Command) (chain.Params, codec.Amount, error) {
	raw, err := cmd.Flags().GetStringArray("param")
	if err != nil {
		return nil, codec.Amount{}, err
	}
	params, err := parseParams(raw)
	if err != nil {
		return nil, codec.Amount{}, err
	}
	valueStr, err := cmd.Flags().GetString("value")
	if err != nil {
		return nil, codec.Amount{}, err
	}
	value, err := utils.ParseBalance(valueStr)
	if err != nil {
		return nil, codec.Amount{}, err
	}
	return params, value, nil
}

func sendTx(cmd *cobra.Command, tx *chain.Transaction) error {
	client, err := getClient(cmd)
	if err != nil {
		return err
	}
	now := time.Now()
	tx.Timestamp = codec.Uint(now.UnixMicro())
	tx.Nonce = codec.Uint(now.UnixNano())
	result, err := client.SendTransaction(context.Background(), tx)
	if err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}
	return printValue(cmd, resultResponse{result})
}

type resultResponse struct {
	*chain.Result
}

func (r resultResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Result)
}

func (r resultResponse) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "txHash: %s\nheight: %d\n", r.TxHash, uint64(r.Height))
	if r.Success() {
		fmt.Fprintf(&b, "status: %s\n", color.GreenString("success"))
	} else {
		fmt.Fprintf(&b, "status: %s (code %d: %s)\n",
			color.RedString("failure"), uint64(r.Failure.Code), r.Failure.Message)
	}
	if r.ScoreAddress != nil {
		fmt.Fprintf(&b, "scoreAddress: %s\n", color.CyanString(r.ScoreAddress.String()))
	}
	if len(r.Output) > 0 {
		fmt.Fprintf(&b, "output: %s\n", r.Output)
	}
	for _, l := range r.EventLogs {
		fmt.Fprintf(&b, "event %s %v %v\n", l.ScoreAddress, l.Indexed, l.Data)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

var deployCmd = &cobra.Command{
	Use:   "deploy [codeID]",
	Short: "Deploy contract code, or update the contract given by --to",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := getSender(cmd, true)
		if err != nil {
			return err
		}
		params, value, err := readTxFlags(cmd)
		if err != nil {
			return err
		}
		toStr, err := cmd.Flags().GetString("to")
		if err != nil {
			return err
		}
		to := codec.InstallAddress
		if len(toStr) > 0 {
			if to, err = codec.ParseAddress(toStr); err != nil {
				return err
			}
		}
		var codeID string
		if len(args) > 0 {
			codeID = args[0]
		}
		return sendTx(cmd, &chain.Transaction{
			From:     from,
			To:       to,
			Value:    value,
			DataType: chain.DataTypeDeploy,
			Data: &chain.Data{
				ContentType: chain.ContentTypeCode,
				Content:     codeID,
				Params:      params,
			},
		})
	},
}

var callCmd = &cobra.Command{
	Use:   "call [contract] [method]",
	Short: "Call a contract method in a transaction",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := getSender(cmd, true)
		if err != nil {
			return err
		}
		to, err := codec.ParseAddress(args[0])
		if err != nil {
			return err
		}
		params, value, err := readTxFlags(cmd)
		if err != nil {
			return err
		}
		return sendTx(cmd, &chain.Transaction{
			From:     from,
			To:       to,
			Value:    value,
			DataType: chain.DataTypeCall,
			Data:     &chain.Data{Method: args[1], Params: params},
		})
	},
}

var sendCmd = &cobra.Command{
	Use:   "send [to] [amount]",
	Short: "Transfer ICX to an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := getSender(cmd, true)
		if err != nil {
			return err
		}
		to, err := codec.ParseAddress(args[0])
		if err != nil {
			return err
		}
		amount, err := utils.ParseBalance(args[1])
		if err != nil {
			return err
		}
		return sendTx(cmd, &chain.Transaction{
			From:  from,
			To:    to,
			Value: amount,
		})
	},
}

func init() {
	txFlags(deployCmd)
	deployCmd.Flags().String("to", "", "Existing contract to update")
	txFlags(callCmd)
	rootCmd.AddCommand(deployCmd, callCmd, sendCmd)
}
