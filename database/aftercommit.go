package database

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// CommitFunc runs once the transaction that queued it has committed. db is the shared
// connection, not the finished transaction.
type CommitFunc func(ctx context.Context, db *gorm.DB)

// CommitQueue collects work that must only happen after a successful commit: outbound
// mail, removal of replaced files.
type CommitQueue struct {
	mu  sync.Mutex
	fns []CommitFunc
}

type commitQueueKey struct{}

// WithCommitQueue returns a context carrying a fresh queue.
func WithCommitQueue(ctx context.Context) (context.Context, *CommitQueue) {
	q := &CommitQueue{}
	return context.WithValue(ctx, commitQueueKey{}, q), q
}

// AfterCommit queues fn on the queue carried by ctx. It returns false when ctx has no queue,
// in which case nothing was queued and the caller decides what to do.
func AfterCommit(ctx context.Context, fn CommitFunc) bool {
	if ctx == nil {
		return false
	}
	q, ok := ctx.Value(commitQueueKey{}).(*CommitQueue)
	if !ok || q == nil {
		return false
	}
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
	return true
}

// Run drains the queue in insertion order.
func (q *CommitQueue) Run(ctx context.Context, db *gorm.DB) {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()
	for _, fn := range fns {
		fn(ctx, db)
	}
}

// Discard drops everything queued so far.
func (q *CommitQueue) Discard() {
	q.mu.Lock()
	q.fns = nil
	q.mu.Unlock()
}

// Transaction runs fn in a transaction on db and drains the work fn queued only if it commits.
func Transaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context, tx *gorm.DB) error) error {
	ctx, q := WithCommitQueue(ctx)
	if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx)
	}); err != nil {
		q.Discard()
		return err
	}
	q.Run(ctx, db.WithContext(ctx))
	return nil
}

// InTransaction reports whether db is bound to an open transaction.
func InTransaction(db *gorm.DB) bool {
	if db == nil || db.Statement == nil {
		return false
	}
	committer, ok := db.Statement.ConnPool.(gorm.TxCommitter)
	return ok && committer != nil
}
