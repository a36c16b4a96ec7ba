// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/nomadconnection/cryptobears/api"
	"github.com/nomadconnection/cryptobears/chain"
	"github.com/nomadconnection/cryptobears/codec"
	"github.com/nomadconnection/cryptobears/contracts"
	"github.com/nomadconnection/cryptobears/contracts/factory"
	"github.com/nomadconnection/cryptobears/contracts/ledger"
	"github.com/nomadconnection/cryptobears/genesis"
	"github.com/nomadconnection/cryptobears/state"
	"github.com/nomadconnection/cryptobears/storage"
	"github.com/nomadconnection/cryptobears/tstate"
)

var _ api.VM = (*VM)(nil)

// NewRegistry returns a registry holding the ledger and factory code.
func NewRegistry() (*chain.Registry, error) {
	r := chain.NewRegistry()
	if err := r.Register(contracts.LedgerCode, ledger.New()); err != nil {
		return nil, err
	}
	if err := r.Register(contracts.FactoryCode, factory.New()); err != nil {
		return nil, err
	}
	return r, nil
}

// VM is the single writer over the database. Submit executes one
// transaction at a time and commits it atomically. Readers only observe
// committed transactions.
type VM struct {
	config    Config
	log       logging.Logger
	db        database.Database
	processor *chain.Processor
	metrics   *Metrics
	registry  *prometheus.Registry
	results   *cache.LRU[ids.ID, *chain.Result]

	// Clock is used for tx timestamps; tests may pin it.
	Clock mockable.Clock

	l      sync.RWMutex
	ready  bool
	closed bool
	height uint64

	subsL   sync.Mutex
	subs    map[uint64]chan *chain.Result
	nextSub uint64
}

func New(log logging.Logger, db database.Database, cfg Config) (*VM, error) {
	codes, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, err
	}
	return &VM{
		config:    cfg,
		log:       log,
		db:        db,
		processor: chain.NewProcessor(log, codes, cfg.MaxCallDepth),
		metrics:   metrics,
		registry:  registry,
		results:   &cache.LRU[ids.ID, *chain.Result]{Size: cfg.ResultCacheSize},
		subs:      map[uint64]chan *chain.Result{},
	}, nil
}

// Initialize applies [g] the first time the database is opened and loads
// the current height.
func (vm *VM) Initialize(ctx context.Context, g *genesis.Genesis) error {
	vm.l.Lock()
	defer vm.l.Unlock()

	if vm.closed {
		return ErrShutdown
	}
	reader := state.NewReader(vm.db)
	done, err := storage.HasGenesis(ctx, reader)
	if err != nil {
		return err
	}
	if !done {
		ts := tstate.New(reader)
		supply, err := g.InitializeState(ctx, ts)
		if err != nil {
			return fmt.Errorf("unable to initialize genesis: %w", err)
		}
		if err := storage.SetGenesis(ctx, ts); err != nil {
			return err
		}
		if err := vm.commit(ts); err != nil {
			return err
		}
		vm.log.Info("genesis applied",
			zap.Int("allocations", len(g.CustomAllocation)),
			zap.Stringer("supply", supply),
		)
	}
	height, err := storage.GetHeight(ctx, reader)
	if err != nil {
		return err
	}
	vm.height = height
	vm.metrics.height.Set(float64(height))
	vm.ready = true
	vm.log.Info("vm initialized", zap.Uint64("height", height))
	return nil
}

func (vm *VM) commit(ts *tstate.TState) error {
	start := time.Now()
	batch := vm.db.NewBatch()
	if err := ts.WriteChanges(batch); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return err
	}
	vm.metrics.txCommit.Observe(float64(time.Since(start)))
	vm.metrics.stateChanges.Add(float64(ts.PendingChanges()))
	return nil
}

func (vm *VM) checkReady() error {
	if vm.closed {
		return ErrShutdown
	}
	if !vm.ready {
		return ErrNotReady
	}
	return nil
}

// Submit executes [tx] and commits its effects and result. A returned error
// means the tx was rejected and left no trace; a failed execution is
// reported through the result status instead.
func (vm *VM) Submit(ctx context.Context, tx *chain.Transaction) (*chain.Result, error) {
	vm.metrics.txsSubmitted.Inc()
	result, err := vm.submit(ctx, tx)
	if err != nil {
		vm.metrics.txsRejected.Inc()
		vm.log.Debug("transaction rejected", zap.Error(err))
		return nil, err
	}
	return result, nil
}

func (vm *VM) submit(ctx context.Context, tx *chain.Transaction) (*chain.Result, error) {
	vm.l.Lock()
	defer vm.l.Unlock()

	if err := vm.checkReady(); err != nil {
		return nil, err
	}
	ts := tstate.New(state.NewReader(vm.db))
	height := vm.height + 1
	timestamp := uint64(vm.Clock.Time().UnixMicro())

	start := time.Now()
	result, err := vm.processor.Execute(ctx, ts, tx, height, timestamp)
	if err != nil {
		return nil, err
	}
	vm.metrics.txExecute.Observe(float64(time.Since(start)))
	if err := vm.commit(ts); err != nil {
		return nil, err
	}
	vm.height = height
	vm.results.Put(ids.ID(result.TxHash), result)
	vm.record(result)
	// Publishing under vm.l keeps subscribers in height order.
	vm.publish(result)
	return result, nil
}

func (vm *VM) record(result *chain.Result) {
	vm.metrics.height.Set(float64(result.Height))
	if !result.Success() {
		vm.metrics.txsFailed.Inc()
		vm.metrics.failuresPerCode.WithLabelValues(strconv.FormatUint(uint64(result.Failure.Code), 10)).Inc()
		return
	}
	vm.metrics.txsSucceeded.Inc()
	if result.ScoreAddress != nil && result.To == codec.InstallAddress {
		vm.metrics.contractsLive.Inc()
	}
	for _, l := range result.EventLogs {
		if len(l.Indexed) == 0 {
			continue
		}
		switch l.Indexed[0] {
		case ledger.TransferEvent:
			vm.metrics.bearsMinted.Inc()
		case ledger.HappyMealEvent:
			vm.metrics.mealsServed.Inc()
		}
	}
}

// GetTransactionResult returns the committed result of [txID].
func (vm *VM) GetTransactionResult(ctx context.Context, txID ids.ID) (*chain.Result, error) {
	if result, ok := vm.results.Get(txID); ok {
		return result, nil
	}

	vm.l.RLock()
	defer vm.l.RUnlock()

	if vm.closed {
		return nil, ErrShutdown
	}
	b, ok, err := storage.GetResult(ctx, state.NewReader(vm.db), txID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTxNotFound, codec.Hash(txID))
	}
	result, err := chain.UnmarshalResult(b)
	if err != nil {
		return nil, err
	}
	vm.results.Put(txID, result)
	return result, nil
}

// Call runs a read-only method against committed state.
func (vm *VM) Call(
	ctx context.Context,
	from codec.Address,
	to codec.Address,
	method string,
	params chain.Params,
) (string, error) {
	vm.l.RLock()
	defer vm.l.RUnlock()

	if err := vm.checkReady(); err != nil {
		return "", err
	}
	vm.metrics.queries.Inc()
	return vm.processor.Query(ctx, state.NewReader(vm.db), from, to, method, params, vm.height)
}

func (vm *VM) GetBalance(ctx context.Context, addr codec.Address) (codec.Amount, error) {
	vm.l.RLock()
	defer vm.l.RUnlock()

	if err := vm.checkReady(); err != nil {
		return codec.Amount{}, err
	}
	return storage.GetBalance(ctx, state.NewReader(vm.db), addr)
}

// Methods returns the method list of the contract at [to].
func (vm *VM) Methods(ctx context.Context, to codec.Address) ([]*chain.Method, error) {
	vm.l.RLock()
	defer vm.l.RUnlock()

	if err := vm.checkReady(); err != nil {
		return nil, err
	}
	return vm.processor.Methods(ctx, state.NewReader(vm.db), to)
}

func (vm *VM) Logger() logging.Logger {
	return vm.log
}

func (vm *VM) Height() uint64 {
	vm.l.RLock()
	defer vm.l.RUnlock()

	return vm.height
}

// Metrics returns the registry of the VM metrics.
func (vm *VM) Metrics() *prometheus.Registry {
	return vm.registry
}

// Subscribe streams every committed result until the returned cancel func
// is called. A subscriber that falls behind by more than the configured
// buffer is dropped and its channel closed.
func (vm *VM) Subscribe() (<-chan *chain.Result, func()) {
	vm.subsL.Lock()
	defer vm.subsL.Unlock()

	ch := make(chan *chain.Result, vm.config.SubscriberBuffer)
	if vm.subs == nil {
		close(ch)
		return ch, func() {}
	}
	id := vm.nextSub
	vm.nextSub++
	vm.subs[id] = ch
	vm.metrics.subscribers.Inc()
	return ch, func() { vm.unsubscribe(id) }
}

func (vm *VM) unsubscribe(id uint64) {
	vm.subsL.Lock()
	defer vm.subsL.Unlock()

	ch, ok := vm.subs[id]
	if !ok {
		return
	}
	delete(vm.subs, id)
	close(ch)
	vm.metrics.subscribers.Dec()
}

func (vm *VM) publish(result *chain.Result) {
	vm.subsL.Lock()
	defer vm.subsL.Unlock()

	for id, ch := range vm.subs {
		select {
		case ch <- result:
		default:
			vm.log.Warn("dropping slow subscriber", zap.Uint64("id", id))
			delete(vm.subs, id)
			close(ch)
			vm.metrics.subscribers.Dec()
		}
	}
}

// Shutdown closes every subscription and the database.
func (vm *VM) Shutdown(context.Context) error {
	vm.l.Lock()
	defer vm.l.Unlock()

	if vm.closed {
		return nil
	}
	vm.closed = true

	vm.subsL.Lock()
	for id, ch := range vm.subs {
		delete(vm.subs, id)
		close(ch)
	}
	vm.subs = nil
	vm.metrics.subscribers.Set(0)
	vm.subsL.Unlock()

	vm.log.Info("vm shutting down", zap.Uint64("height", vm.height))
	return vm.db.Close()
}
