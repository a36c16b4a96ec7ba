// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nomadconnection/cryptobears/api/jsonrpc"
	"github.com/nomadconnection/cryptobears/codec"
)

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error getting home directory:", err)
		os.Exit(1)
	}

	configDir := filepath.Join(homeDir, ".bears-cli")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "Error creating config directory:", err)
		os.Exit(1)
	}

	configFile := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if _, err := os.Create(configFile); err != nil {
			fmt.Fprintln(os.Stderr, "Error creating config file:", err)
			os.Exit(1)
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.SetEnvPrefix("BEARS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config:", err)
			os.Exit(1)
		}
	}
}

func isJSONOutputRequested(cmd *cobra.Command) (bool, error) {
	output, err := getConfigValue(cmd, "output", false)
	if err != nil {
		return false, fmt.Errorf("failed to get output format: %w", err)
	}
	return strings.ToLower(output) == "json", nil
}

func printValue(cmd *cobra.Command, v fmt.Stringer) error {
	isJSON, err := isJSONOutputRequested(cmd)
	if err != nil {
		return err
	}
	if isJSON {
		jsonBytes, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}
	fmt.Println(v.String())
	return nil
}

func getConfigValue(cmd *cobra.Command, key string, required bool) (string, error) {
	// Flags win over the config file.
	if value, err := cmd.Flags().GetString(key); err == nil && value != "" {
		return value, nil
	}
	if value := viper.GetString(key); value != "" {
		return value, nil
	}
	if required {
		return "", fmt.Errorf("required value for %s not found", key)
	}
	return "", nil
}

func setConfigValue(key, value string) error {
	viper.Set(key, value)
	return viper.WriteConfig()
}

func getClient(cmd *cobra.Command) (*jsonrpc.JSONRPCClient, error) {
	endpoint, err := getConfigValue(cmd, "endpoint", true)
	if err != nil {
		return nil, fmt.Errorf("failed to get endpoint: %w", err)
	}
	return jsonrpc.NewJSONRPCClient(endpoint), nil
}

func getSender(cmd *cobra.Command, required bool) (codec.Address, error) {
	from, err := getConfigValue(cmd, "from", required)
	if err != nil {
		return codec.EmptyAddress, err
	}
	if len(from) == 0 {
		return codec.EmptyAddress, nil
	}
	addr, err := codec.ParseAddress(from)
	if err != nil {
		return codec.EmptyAddress, fmt.Errorf("failed to parse sender: %w", err)
	}
	if !addr.IsEOA() {
		return codec.EmptyAddress, fmt.Errorf("sender %s is not an account", addr)
	}
	return addr, nil
}
