package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ds124wfegd/WB_L3/6/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	fetchPage     func(ctx context.Context, threadID string, page, pageSize int, policy entity.SortPolicy) (*entity.CommentsPage, error)
	createComment func(ctx context.Context, threadID string, req entity.CreateCommentRequest) (*entity.Comment, error)
	createReply   func(ctx context.Context, threadID, parentID string, req entity.CreateCommentRequest) (*entity.Comment, error)
	toggleLike    func(ctx context.Context, commentID string) (*entity.LikeResult, error)
	deleteComment func(ctx context.Context, commentID string) error
}

func (f *fakeRemote) FetchPage(ctx context.Context, threadID string, page, pageSize int, policy entity.SortPolicy) (*entity.CommentsPage, error) {
	if f.fetchPage == nil {
		return nil, errors.New("fetchPage not wired")
	}
	return f.fetchPage(ctx, threadID, page, pageSize, policy)
}

func (f *fakeRemote) CreateComment(ctx context.Context, threadID string, req entity.CreateCommentRequest) (*entity.Comment, error) {
	if f.createComment == nil {
		return nil, errors.New("createComment not wired")
	}
	return f.createComment(ctx, threadID, req)
}

func (f *fakeRemote) CreateReply(ctx context.Context, threadID, parentID string, req entity.CreateCommentRequest) (*entity.Comment, error) {
	if f.createReply == nil {
		return nil, errors.New("createReply not wired")
	}
	return f.createReply(ctx, threadID, parentID, req)
}

func (f *fakeRemote) ToggleLike(ctx context.Context, commentID string) (*entity.LikeResult, error) {
	if f.toggleLike == nil {
		return nil, errors.New("toggleLike not wired")
	}
	return f.toggleLike(ctx, commentID)
}

func (f *fakeRemote) DeleteComment(ctx context.Context, commentID string) error {
	if f.deleteComment == nil {
		return errors.New("deleteComment not wired")
	}
	return f.deleteComment(ctx, commentID)
}

func singlePage(records ...entity.Comment) func(context.Context, string, int, int, entity.SortPolicy) (*entity.CommentsPage, error) {
	return func(_ context.Context, _ string, page, pageSize int, _ entity.SortPolicy) (*entity.CommentsPage, error) {
		return &entity.CommentsPage{
			Comments: records,
			Total:    len(records),
			Page:     page,
			PageSize: pageSize,
			HasNext:  false,
		}, nil
	}
}

func loadedEngine(t *testing.T, fake *fakeRemote, records ...entity.Comment) *Engine {
	t.Helper()
	if fake.fetchPage == nil {
		fake.fetchPage = singlePage(records...)
	}
	eng := NewEngine(fake, "thread-1", 10)
	require.NoError(t, eng.Refresh(context.Background()))
	return eng
}

func findByID(forest []entity.Comment, id string) *entity.Comment {
	for _, node := range forest {
		if node.ID == id {
			return &node
		}
		if found := findByID(node.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// TestToggleLikeOptimisticThenReconciled: локальное состояние меняется до
// ответа сервера, ответ сервера его перетирает
func TestToggleLikeOptimisticThenReconciled(t *testing.T) {
	release := make(chan struct{})
	fake := &fakeRemote{
		toggleLike: func(_ context.Context, _ string) (*entity.LikeResult, error) {
			<-release
			return &entity.LikeResult{Liked: true, LikesCount: 6}, nil
		},
	}
	target := rec("1", "", base, 5)
	eng := loadedEngine(t, fake, target)

	done := make(chan error, 1)
	go func() { done <- eng.ToggleLike(context.Background(), "1") }()

	// оптимистичная правка видна до завершения запроса
	require.Eventually(t, func() bool {
		node := findByID(eng.Tree(), "1")
		return node != nil && node.IsLiked && node.LikesCount == 6
	}, time.Second, time.Millisecond)

	close(release)
	require.NoError(t, <-done)

	node := findByID(eng.Tree(), "1")
	require.NotNil(t, node)
	assert.True(t, node.IsLiked)
	assert.Equal(t, 6, node.LikesCount)
}

// TestToggleLikeRollbackOnFailure: при ошибке восстанавливаются ровно
// прежние значения, и ошибка отдаётся вызывающему
func TestToggleLikeRollbackOnFailure(t *testing.T) {
	remoteErr := errors.New("network down")
	fake := &fakeRemote{
		toggleLike: func(_ context.Context, _ string) (*entity.LikeResult, error) {
			return nil, remoteErr
		},
	}
	eng := loadedEngine(t, fake, rec("1", "", base, 5))

	err := eng.ToggleLike(context.Background(), "1")
	require.ErrorIs(t, err, remoteErr)
	assert.ErrorIs(t, eng.Err(), remoteErr)

	node := findByID(eng.Tree(), "1")
	require.NotNil(t, node)
	assert.False(t, node.IsLiked)
	assert.Equal(t, 5, node.LikesCount)
}

// TestToggleLikeServerValueWins: сервер может не согласиться с локальной
// догадкой, его значения авторитетны
func TestToggleLikeServerValueWins(t *testing.T) {
	fake := &fakeRemote{
		toggleLike: func(_ context.Context, _ string) (*entity.LikeResult, error) {
			// второй зритель успел лайкнуть тот же комментарий
			return &entity.LikeResult{Liked: true, LikesCount: 7}, nil
		},
	}
	eng := loadedEngine(t, fake, rec("1", "", base, 5))

	require.NoError(t, eng.ToggleLike(context.Background(), "1"))

	node := findByID(eng.Tree(), "1")
	assert.True(t, node.IsLiked)
	assert.Equal(t, 7, node.LikesCount)
}

// TestToggleLikeClampsAtZero: повторные анлайки не уводят счётчик ниже нуля
func TestToggleLikeClampsAtZero(t *testing.T) {
	blocked := make(chan struct{})
	fake := &fakeRemote{
		toggleLike: func(_ context.Context, _ string) (*entity.LikeResult, error) {
			<-blocked
			return nil, errors.New("slow network")
		},
	}
	liked := rec("1", "", base, 0)
	liked.IsLiked = true
	eng := loadedEngine(t, fake, liked)

	done := make(chan error, 1)
	go func() { done <- eng.ToggleLike(context.Background(), "1") }()

	require.Eventually(t, func() bool {
		node := findByID(eng.Tree(), "1")
		return node != nil && !node.IsLiked
	}, time.Second, time.Millisecond)

	node := findByID(eng.Tree(), "1")
	assert.Equal(t, 0, node.LikesCount)

	close(blocked)
	<-done
}

// TestToggleLikeLastCompletingWins: два конкурентных тоггла по одному
// комментарию — выигрывает последний завершившийся ответ, не последний вызов
func TestToggleLikeLastCompletingWins(t *testing.T) {
	type pending struct {
		release chan struct{}
		result  *entity.LikeResult
	}
	first := &pending{release: make(chan struct{}), result: &entity.LikeResult{Liked: true, LikesCount: 1}}
	second := &pending{release: make(chan struct{}), result: &entity.LikeResult{Liked: false, LikesCount: 0}}

	calls := make(chan *pending, 2)
	calls <- first
	calls <- second
	started := make(chan struct{}, 2)

	fake := &fakeRemote{
		toggleLike: func(_ context.Context, _ string) (*entity.LikeResult, error) {
			call := <-calls
			started <- struct{}{}
			<-call.release
			return call.result, nil
		},
	}
	eng := loadedEngine(t, fake, rec("2", "", base, 0))

	done1 := make(chan struct{})
	done2 := make(chan struct{})
	go func() { defer close(done1); _ = eng.ToggleLike(context.Background(), "2") }()
	<-started
	go func() { defer close(done2); _ = eng.ToggleLike(context.Background(), "2") }()
	<-started

	// завершаем ответы в известном порядке: сначала first, затем second
	close(first.release)
	<-done1
	close(second.release)
	<-done2

	node := findByID(eng.Tree(), "2")
	require.NotNil(t, node)
	assert.Equal(t, second.result.Liked, node.IsLiked)
	assert.Equal(t, second.result.LikesCount, node.LikesCount)
}

// TestToggleLikeUnknownComment
func TestToggleLikeUnknownComment(t *testing.T) {
	eng := loadedEngine(t, &fakeRemote{})
	err := eng.ToggleLike(context.Background(), "ghost")
	assert.ErrorIs(t, err, entity.ErrCommentNotFound)
}

// TestAddInsertsAuthoritativeRecord: вставляется именно запись сервера,
// с его id, счётчик увеличивается только после подтверждения
func TestAddInsertsAuthoritativeRecord(t *testing.T) {
	created := rec("server-id", "", base.Add(time.Hour), 0)
	fake := &fakeRemote{
		createComment: func(_ context.Context, threadID string, req entity.CreateCommentRequest) (*entity.Comment, error) {
			assert.Equal(t, "thread-1", threadID)
			out := created
			out.Author = req.Author
			out.Content = req.Content
			return &out, nil
		},
	}
	eng := loadedEngine(t, fake, rec("1", "", base, 0))
	require.Equal(t, 1, eng.TotalCount())

	got, err := eng.Add(context.Background(), entity.CreateCommentRequest{Author: "bob", Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "server-id", got.ID)

	assert.Equal(t, 2, eng.TotalCount())
	node := findByID(eng.Tree(), "server-id")
	require.NotNil(t, node)
	assert.Equal(t, "bob", node.Author)
}

// TestAddFailureChangesNothing: создания не применяются оптимистично,
// откатывать нечего
func TestAddFailureChangesNothing(t *testing.T) {
	remoteErr := errors.New("500")
	fake := &fakeRemote{
		createComment: func(_ context.Context, _ string, _ entity.CreateCommentRequest) (*entity.Comment, error) {
			return nil, remoteErr
		},
	}
	eng := loadedEngine(t, fake, rec("1", "", base, 0))

	_, err := eng.Add(context.Background(), entity.CreateCommentRequest{Author: "bob", Content: "hi"})
	require.ErrorIs(t, err, remoteErr)

	assert.Equal(t, 1, eng.TotalCount())
	assert.Len(t, eng.Tree(), 1)
	assert.ErrorIs(t, eng.Err(), remoteErr)
}

// TestReplyAttachesUnderParent
func TestReplyAttachesUnderParent(t *testing.T) {
	fake := &fakeRemote{
		createReply: func(_ context.Context, _, parentID string, req entity.CreateCommentRequest) (*entity.Comment, error) {
			reply := rec("reply-id", parentID, base.Add(time.Hour), 0)
			reply.Content = req.Content
			return &reply, nil
		},
	}
	eng := loadedEngine(t, fake, rec("1", "", base, 0))

	_, err := eng.Reply(context.Background(), "1", entity.CreateCommentRequest{Author: "bob", Content: "re"})
	require.NoError(t, err)

	assert.Equal(t, 2, eng.TotalCount())
	forest := eng.Tree()
	require.Len(t, forest, 1)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "reply-id", forest[0].Children[0].ID)
	assert.Equal(t, 1, forest[0].Children[0].Depth)
}

// TestDeleteRemovesRecordAndDecrementsTotal
func TestDeleteRemovesRecordAndDecrementsTotal(t *testing.T) {
	fake := &fakeRemote{
		deleteComment: func(_ context.Context, id string) error {
			assert.Equal(t, "1", id)
			return nil
		},
	}
	eng := loadedEngine(t, fake, rec("1", "", base, 0), rec("2", "1", base.Add(time.Minute), 0))
	require.Equal(t, 2, eng.TotalCount())

	require.NoError(t, eng.Delete(context.Background(), "1"))

	assert.Equal(t, 1, eng.TotalCount())
	assert.Nil(t, findByID(eng.Tree(), "1"))
	// ответ удалённого всплывает в корень до следующей полной перезагрузки
	promoted := findByID(eng.Tree(), "2")
	require.NotNil(t, promoted)
	assert.Equal(t, 0, promoted.Depth)
}

// TestDeleteFailureChangesNothing
func TestDeleteFailureChangesNothing(t *testing.T) {
	remoteErr := errors.New("403")
	fake := &fakeRemote{
		deleteComment: func(_ context.Context, _ string) error { return remoteErr },
	}
	eng := loadedEngine(t, fake, rec("1", "", base, 0))

	err := eng.Delete(context.Background(), "1")
	require.ErrorIs(t, err, remoteErr)
	assert.Equal(t, 1, eng.TotalCount())
	assert.NotNil(t, findByID(eng.Tree(), "1"))
}

// TestLateReconciliationAfterDelete: ответ на лайк, пришедший после удаления
// комментария, тихо отбрасывается
func TestLateReconciliationAfterDelete(t *testing.T) {
	release := make(chan struct{})
	fake := &fakeRemote{
		toggleLike: func(_ context.Context, _ string) (*entity.LikeResult, error) {
			<-release
			return &entity.LikeResult{Liked: true, LikesCount: 1}, nil
		},
		deleteComment: func(_ context.Context, _ string) error { return nil },
	}
	eng := loadedEngine(t, fake, rec("1", "", base, 0))

	done := make(chan error, 1)
	go func() { done <- eng.ToggleLike(context.Background(), "1") }()

	require.Eventually(t, func() bool {
		node := findByID(eng.Tree(), "1")
		return node != nil && node.IsLiked
	}, time.Second, time.Millisecond)

	require.NoError(t, eng.Delete(context.Background(), "1"))

	close(release)
	require.NoError(t, <-done)
	assert.Nil(t, findByID(eng.Tree(), "1"))
}

// TestLoadMoreAppendsWithoutDuplicates: страницы склеиваются без дублей,
// has_more берётся из метаданных сервера
func TestLoadMoreAppendsWithoutDuplicates(t *testing.T) {
	pages := map[int]*entity.CommentsPage{
		1: {
			Comments: []entity.Comment{rec("1", "", base, 0), rec("2", "", base.Add(time.Minute), 0)},
			Total:    3,
			HasNext:  true,
		},
		2: {
			// запись 2 съехала на вторую страницу из-за вставки между запросами
			Comments: []entity.Comment{rec("2", "", base.Add(time.Minute), 0), rec("3", "", base.Add(2*time.Minute), 0)},
			Total:    3,
			HasNext:  false,
		},
	}
	fake := &fakeRemote{
		fetchPage: func(_ context.Context, _ string, page, _ int, _ entity.SortPolicy) (*entity.CommentsPage, error) {
			return pages[page], nil
		},
	}
	eng := NewEngine(fake, "thread-1", 2)

	require.NoError(t, eng.Refresh(context.Background()))
	require.True(t, eng.HasMore())
	require.NoError(t, eng.LoadMore(context.Background()))

	assert.False(t, eng.HasMore())
	assert.Equal(t, 3, eng.TotalCount())

	forest := eng.Tree()
	seen := make(map[string]int)
	for _, node := range forest {
		seen[node.ID]++
	}
	assert.Equal(t, map[string]int{"1": 1, "2": 1, "3": 1}, seen)

	// дальше грузить нечего — ещё один LoadMore ничего не делает
	require.NoError(t, eng.LoadMore(context.Background()))
	assert.Equal(t, 3, len(eng.Tree()))
}

// TestSetSortPolicyReloadsFromPageOne: смена сортировки сбрасывает курсор и
// перезапрашивает первую страницу под новой политикой
func TestSetSortPolicyReloadsFromPageOne(t *testing.T) {
	type fetch struct {
		page   int
		policy entity.SortPolicy
	}
	var fetches []fetch
	fake := &fakeRemote{
		fetchPage: func(_ context.Context, _ string, page, _ int, policy entity.SortPolicy) (*entity.CommentsPage, error) {
			fetches = append(fetches, fetch{page: page, policy: policy})
			return &entity.CommentsPage{
				Comments: []entity.Comment{rec("1", "", base, 0)},
				Total:    10,
				HasNext:  true,
			}, nil
		},
	}
	eng := NewEngine(fake, "thread-1", 1)

	require.NoError(t, eng.Refresh(context.Background()))
	require.NoError(t, eng.LoadMore(context.Background()))
	require.NoError(t, eng.SetSortPolicy(context.Background(), entity.SortMostLiked))

	require.Len(t, fetches, 3)
	assert.Equal(t, fetch{page: 1, policy: entity.SortNewest}, fetches[0])
	assert.Equal(t, fetch{page: 2, policy: entity.SortNewest}, fetches[1])
	assert.Equal(t, fetch{page: 1, policy: entity.SortMostLiked}, fetches[2])
	assert.Equal(t, entity.SortMostLiked, eng.SortPolicy())
}

// TestSetSortPolicyRejectsUnknown
func TestSetSortPolicyRejectsUnknown(t *testing.T) {
	var fetched bool
	fake := &fakeRemote{
		fetchPage: func(_ context.Context, _ string, _, _ int, _ entity.SortPolicy) (*entity.CommentsPage, error) {
			fetched = true
			return &entity.CommentsPage{}, nil
		},
	}
	eng := NewEngine(fake, "thread-1", 10)

	err := eng.SetSortPolicy(context.Background(), "by_vibes")
	assert.ErrorIs(t, err, entity.ErrInvalidSortPolicy)
	assert.False(t, fetched)
	assert.Equal(t, entity.SortNewest, eng.SortPolicy())
}

// TestFetchFailureKeepsHeldPages: упавшая догрузка не трогает уже
// показанные страницы
func TestFetchFailureKeepsHeldPages(t *testing.T) {
	remoteErr := errors.New("timeout")
	fake := &fakeRemote{
		fetchPage: func(_ context.Context, _ string, page, _ int, _ entity.SortPolicy) (*entity.CommentsPage, error) {
			if page > 1 {
				return nil, remoteErr
			}
			return &entity.CommentsPage{
				Comments: []entity.Comment{rec("1", "", base, 0)},
				Total:    5,
				HasNext:  true,
			}, nil
		},
	}
	eng := NewEngine(fake, "thread-1", 1)
	require.NoError(t, eng.Refresh(context.Background()))

	err := eng.LoadMore(context.Background())
	require.ErrorIs(t, err, remoteErr)
	assert.ErrorIs(t, eng.Err(), remoteErr)
	assert.False(t, eng.Loading())
	require.Len(t, eng.Tree(), 1)
	assert.Equal(t, "1", eng.Tree()[0].ID)

	// успешный повтор очищает ошибку
	require.NoError(t, eng.Refresh(context.Background()))
	assert.NoError(t, eng.Err())
}
