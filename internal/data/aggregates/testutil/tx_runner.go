package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/careerbridge-backend/internal/data/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/platform/dbctx"
)

// InjectedTxRunner is a TxRunner for aggregate tests that never touches a
// database. Fakes can register OnCommit/OnRollback to apply or discard staged
// writes, which lets tests observe all-or-nothing behaviour.
type InjectedTxRunner struct {
	mu sync.Mutex

	FailBegin  error
	FailCommit error

	OnCommit   func()
	OnRollback func()

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin, failCommit := r.FailBegin, r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if fn != nil {
		if err := fn(dbctx.Context{Ctx: ctx}); err != nil {
			r.rollback()
			return err
		}
	}
	if failCommit != nil {
		r.rollback()
		return failCommit
	}
	r.mu.Lock()
	r.CommitCalls++
	onCommit := r.OnCommit
	r.mu.Unlock()
	if onCommit != nil {
		onCommit()
	}
	return nil
}

func (r *InjectedTxRunner) rollback() {
	r.mu.Lock()
	r.RollbackCalls++
	onRollback := r.OnRollback
	r.mu.Unlock()
	if onRollback != nil {
		onRollback()
	}
}
