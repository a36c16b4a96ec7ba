// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/ava-labs/avalanchego/utils/ulimit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nomadconnection/cryptobears/api"
	"github.com/nomadconnection/cryptobears/api/jsonrpc"
	"github.com/nomadconnection/cryptobears/api/ws"
	"github.com/nomadconnection/cryptobears/cmd/bearvm/version"
	"github.com/nomadconnection/cryptobears/config"
	"github.com/nomadconnection/cryptobears/consts"
	"github.com/nomadconnection/cryptobears/genesis"
	"github.com/nomadconnection/cryptobears/pebble"
	"github.com/nomadconnection/cryptobears/server"
	"github.com/nomadconnection/cryptobears/vm"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:        consts.Name,
	Short:      "CryptoBears contract node",
	SuggestFor: []string{consts.Name},
}

func init() {
	cobra.EnablePrefixMatching = true
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Runs the node until interrupted",
			RunE:  runFunc,
		},
		&cobra.Command{
			Use:   "config",
			Short: "Prints out the effective config",
			RunE:  configFunc,
		},
		version.NewCommand(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed %v\n", consts.Name, err)
		os.Exit(1)
	}
	os.Exit(0)
}

func configFunc(*cobra.Command, []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	b, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Print(string(b))
	return nil
}

func runFunc(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	for _, dir := range []string{cfg.LogDir(), cfg.DatabaseDir()} {
		if err := os.MkdirAll(dir, perms.ReadWriteExecute); err != nil {
			return err
		}
	}
	log, err := config.NewLogger(consts.Name, cfg.LogDir(), cfg.Log)
	if err != nil {
		return err
	}
	defer log.Stop()

	if err := ulimit.Set(ulimit.DefaultFDLimit, log); err != nil {
		return fmt.Errorf("%w: failed to set fd limit correctly", err)
	}

	g, err := genesis.Load(cfg.GenesisFile)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}
	db, dbRegistry, err := pebble.New(cfg.DatabaseDir(), cfg.Pebble)
	if err != nil {
		return err
	}
	v, err := vm.New(log, db, cfg.VM)
	if err != nil {
		_ = db.Close()
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := v.Initialize(ctx, g); err != nil {
		_ = v.Shutdown(ctx)
		return err
	}

	listener, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		_ = v.Shutdown(ctx)
		return err
	}
	srv := server.New(log, listener, cfg.HTTP, cfg.AllowedOrigins, cfg.ShutdownTimeout)
	if err := server.AddAPIs[api.VM](
		srv,
		v,
		[]api.HandlerFactory[api.VM]{jsonrpc.JSONRPCServerFactory{}},
		[]api.HandlerFactory[api.VM]{ws.WebSocketServerFactory{Config: cfg.Stream}},
	); err != nil {
		_ = v.Shutdown(ctx)
		return err
	}
	srv.AddRoute(server.NewMetricsHandler(v.Metrics(), dbRegistry), server.MetricsEndpoint)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := srv.Dispatch(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down", zap.Error(context.Cause(ctx)))
		return srv.Shutdown()
	})
	err = eg.Wait()
	if shutdownErr := v.Shutdown(context.Background()); shutdownErr != nil {
		log.Error("unable to shutdown vm", zap.Error(shutdownErr))
	}
	return err
}
