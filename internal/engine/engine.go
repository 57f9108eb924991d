package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/ds124wfegd/WB_L3/6/internal/entity"

	"github.com/sirupsen/logrus"
)

const defaultPageSize = 10

// Engine keeps one comment thread synchronized with the remote side.
// Reads go remote -> record store -> tree; writes are applied optimistically
// where a safe guess exists (likes) and reconciled with the server response.
//
// The mutex only guards local state. Network calls always run outside it, so
// any number of mutations may be in flight at once; reconciliation happens
// in completion order and the last-completing response wins.
type Engine struct {
	remote   Remote
	threadID string
	pageSize int

	mu      sync.Mutex
	store   *recordStore
	policy  entity.SortPolicy
	page    int
	total   int
	hasMore bool
	loading bool
	lastErr error
}

func NewEngine(remote Remote, threadID string, pageSize int) *Engine {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Engine{
		remote:   remote,
		threadID: threadID,
		pageSize: pageSize,
		store:    newRecordStore(),
		policy:   entity.SortNewest,
	}
}

// Tree builds the current forest under the active sort policy.
func (e *Engine) Tree() []entity.Comment {
	e.mu.Lock()
	records := e.store.Snapshot()
	policy := e.policy
	e.mu.Unlock()

	return BuildTree(records, policy)
}

func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Err returns the last failed operation's error, nil after a successful load.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *Engine) TotalCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total
}

func (e *Engine) HasMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasMore
}

func (e *Engine) SortPolicy() entity.SortPolicy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.policy
}

// SetSortPolicy switches the active policy and reloads from page 1: page
// boundaries are defined server-side per policy, re-sorting a partial page
// locally would show an inconsistent tree.
func (e *Engine) SetSortPolicy(ctx context.Context, policy entity.SortPolicy) error {
	if !policy.Valid() {
		return entity.ErrInvalidSortPolicy
	}
	e.mu.Lock()
	e.policy = policy
	e.mu.Unlock()

	return e.loadPage(ctx, 1)
}

// Refresh reloads page 1, replacing everything held.
func (e *Engine) Refresh(ctx context.Context) error {
	return e.loadPage(ctx, 1)
}

// LoadMore fetches the next page and appends it. No-op when the server
// reported no further pages.
func (e *Engine) LoadMore(ctx context.Context) error {
	e.mu.Lock()
	hasMore := e.hasMore
	next := e.page + 1
	e.mu.Unlock()

	if !hasMore {
		return nil
	}
	return e.loadPage(ctx, next)
}

func (e *Engine) loadPage(ctx context.Context, page int) error {
	e.mu.Lock()
	e.loading = true
	e.lastErr = nil
	policy := e.policy
	size := e.pageSize
	e.mu.Unlock()

	resp, err := e.remote.FetchPage(ctx, e.threadID, page, size, policy)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading = false
	if err != nil {
		// already-held pages stay intact, retry is caller-initiated
		e.lastErr = err
		return fmt.Errorf("load page %d: %w", page, err)
	}

	if page == 1 {
		e.store.Replace(resp.Comments)
	} else {
		e.store.Merge(resp.Comments)
	}
	e.page = page
	e.total = resp.Total
	e.hasMore = resp.HasNext
	return nil
}

// Add creates a top-level comment. There is no optimistic insert: ids are
// server-assigned, so the record becomes visible once the call returns.
func (e *Engine) Add(ctx context.Context, req entity.CreateCommentRequest) (*entity.Comment, error) {
	created, err := e.remote.CreateComment(ctx, e.threadID, req)
	if err != nil {
		e.setErr(err)
		return nil, fmt.Errorf("add comment: %w", err)
	}

	e.mu.Lock()
	e.store.Insert(*created)
	e.total++
	e.mu.Unlock()
	return created, nil
}

// Reply creates a comment attached to parentID, same protocol as Add.
func (e *Engine) Reply(ctx context.Context, parentID string, req entity.CreateCommentRequest) (*entity.Comment, error) {
	created, err := e.remote.CreateReply(ctx, e.threadID, parentID, req)
	if err != nil {
		e.setErr(err)
		return nil, fmt.Errorf("reply to %s: %w", parentID, err)
	}

	e.mu.Lock()
	e.store.Insert(*created)
	e.total++
	e.mu.Unlock()
	return created, nil
}

// ToggleLike flips the like state optimistically before the round-trip, then
// overwrites the guess with the server values. On failure the exact prior
// values are restored, never refetched: a refetch could race with other
// in-flight mutations.
func (e *Engine) ToggleLike(ctx context.Context, commentID string) error {
	e.mu.Lock()
	rec, ok := e.store.Get(commentID)
	if !ok {
		e.mu.Unlock()
		return entity.ErrCommentNotFound
	}
	prevLiked := rec.IsLiked
	prevCount := rec.LikesCount
	e.store.Update(commentID, func(c *entity.Comment) {
		if c.IsLiked {
			c.IsLiked = false
			if c.LikesCount > 0 {
				c.LikesCount--
			}
		} else {
			c.IsLiked = true
			c.LikesCount++
		}
	})
	e.mu.Unlock()

	res, err := e.remote.ToggleLike(ctx, commentID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.store.Update(commentID, func(c *entity.Comment) {
			c.IsLiked = prevLiked
			c.LikesCount = prevCount
		})
		e.lastErr = err
		logrus.WithFields(logrus.Fields{
			"comment_id": commentID,
			"error":      err.Error(),
		}).Warn("like toggle failed, optimistic change rolled back")
		return fmt.Errorf("toggle like %s: %w", commentID, err)
	}

	e.store.Update(commentID, func(c *entity.Comment) {
		c.IsLiked = res.Liked
		c.LikesCount = res.LikesCount
	})
	return nil
}

// Delete removes a comment after the server confirms. Only the confirmed
// record leaves the store; its replies reappear as top-level until the next
// full reload picks up the server-side cascade.
func (e *Engine) Delete(ctx context.Context, commentID string) error {
	if err := e.remote.DeleteComment(ctx, commentID); err != nil {
		e.setErr(err)
		return fmt.Errorf("delete comment %s: %w", commentID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store.Remove(commentID) {
		e.total--
		if e.total < 0 {
			e.total = 0
		}
	}
	return nil
}

func (e *Engine) setErr(err error) {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
}
