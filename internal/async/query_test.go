package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirius-dms/dms-client/internal/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", ErrorMessage(nil))
	assert.Equal(t, "Document not found", ErrorMessage(&apiclient.APIError{StatusCode: 404, Message: "Document not found"}))
	assert.Equal(t, "Document not found",
		ErrorMessage(fmt.Errorf("load document: %w", &apiclient.APIError{StatusCode: 404, Message: "Document not found"})))
	assert.Equal(t, "plain failure", ErrorMessage(errors.New("plain failure")))
	assert.Equal(t, fallbackMessage, ErrorMessage(errors.New("  ")))
	assert.Equal(t, "API error (500):", ErrorMessage(&apiclient.APIError{StatusCode: 500}))
}

func TestQuery_TerminalExclusivity(t *testing.T) {
	fail := true
	q := NewQuery(func(ctx context.Context, id string) (string, error) {
		if fail {
			return "", errors.New("boom")
		}
		return "doc-" + id, nil
	}, QueryOptions[string]{})

	for i := 0; i < 4; i++ {
		fail = i%2 == 0
		data, err := q.Execute(context.Background(), "1")
		s := q.State()

		assert.False(t, s.Loading)
		assert.NotEqual(t, s.HasData, s.Error != "", "exactly one of data or error")
		if fail {
			require.Error(t, err)
			assert.Equal(t, "boom", s.Error)
			assert.Empty(t, s.Data)
		} else {
			require.NoError(t, err)
			assert.Equal(t, "doc-1", data)
			assert.Equal(t, "doc-1", s.Data)
		}
	}
}

func TestQuery_Callbacks(t *testing.T) {
	var succeeded []int
	var failed []error
	q := NewQuery(func(ctx context.Context, n int) (int, error) {
		if n < 0 {
			return 0, errors.New("negative")
		}
		return n * 2, nil
	}, QueryOptions[int]{
		OnSuccess: func(v int) { succeeded = append(succeeded, v) },
		OnError:   func(err error) { failed = append(failed, err) },
	})

	_, _ = q.Execute(context.Background(), 2)
	_, err := q.Execute(context.Background(), -1)

	assert.EqualError(t, err, "negative")
	assert.Equal(t, []int{4}, succeeded)
	require.Len(t, failed, 1)
	assert.Same(t, err, failed[0])
}

func TestQuery_StaleResultIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	q := NewQuery(func(ctx context.Context, name string) (string, error) {
		if name == "slow" {
			<-release
		}
		return name, nil
	}, QueryOptions[string]{})

	slowDone := make(chan string)
	go func() {
		v, _ := q.Execute(context.Background(), "slow")
		slowDone <- v
	}()
	require.Eventually(t, func() bool { return q.State().Loading }, time.Second, time.Millisecond)

	fast, err := q.Execute(context.Background(), "fast")
	require.NoError(t, err)
	assert.Equal(t, "fast", fast)

	close(release)
	assert.Equal(t, "slow", <-slowDone, "the superseded caller still gets its own result")

	s := q.State()
	assert.Equal(t, "fast", s.Data)
	assert.False(t, s.Loading)
}

func TestQuery_NewCallCancelsPrevious(t *testing.T) {
	q := NewQuery(func(ctx context.Context, block bool) (int, error) {
		if block {
			<-ctx.Done()
			return 0, apiclient.Cancelled(ctx)
		}
		return 1, nil
	}, QueryOptions[int]{})

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Execute(context.Background(), true)
		errCh <- err
	}()
	require.Eventually(t, func() bool { return q.State().Loading }, time.Second, time.Millisecond)

	v, err := q.Execute(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, apiclient.ErrCancelled)
	case <-time.After(time.Second):
		t.Fatal("previous call was not cancelled")
	}
	assert.Equal(t, 1, q.State().Data)
	assert.Empty(t, q.State().Error)
}

func TestQuery_ResetAndSetData(t *testing.T) {
	initial := []string{"cached"}
	q := NewQuery(func(ctx context.Context, _ struct{}) ([]string, error) {
		return nil, errors.New("offline")
	}, QueryOptions[[]string]{InitialData: &initial})

	assert.Equal(t, State[[]string]{Data: initial, HasData: true}, q.State())

	_, err := q.Execute(context.Background(), struct{}{})
	require.Error(t, err)
	assert.Equal(t, "offline", q.State().Error)

	q.SetData([]string{"optimistic"})
	s := q.State()
	assert.Equal(t, []string{"optimistic"}, s.Data)
	assert.Empty(t, s.Error)

	q.Reset()
	assert.Equal(t, State[[]string]{Data: initial, HasData: true}, q.State())
}

func TestQuery_ResetDiscardsInFlight(t *testing.T) {
	release := make(chan struct{})
	q := NewQuery(func(ctx context.Context, _ int) (string, error) {
		<-release
		return "late", nil
	}, QueryOptions[string]{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = q.Execute(context.Background(), 0)
	}()
	require.Eventually(t, func() bool { return q.State().Loading }, time.Second, time.Millisecond)

	q.Reset()
	close(release)
	<-done

	assert.Equal(t, State[string]{}, q.State())
}

func TestQuery_Immediate(t *testing.T) {
	q := NewQuery(func(ctx context.Context, _ struct{}) (string, error) {
		return "profile", nil
	}, QueryOptions[string]{Immediate: true})

	require.Eventually(t, func() bool { return q.State().HasData }, time.Second, time.Millisecond)
	assert.Equal(t, "profile", q.State().Data)
	assert.False(t, q.State().Loading)
}

func TestQuery_Subscribe(t *testing.T) {
	q := NewQuery(func(ctx context.Context, n int) (int, error) { return n, nil }, QueryOptions[int]{})

	var mu sync.Mutex
	var seen []State[int]
	unsubscribe := q.Subscribe(func(s State[int]) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	_, _ = q.Execute(context.Background(), 7)
	unsubscribe()
	unsubscribe()
	_, _ = q.Execute(context.Background(), 8)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Loading)
	assert.Equal(t, State[int]{Data: 7, HasData: true}, seen[1])
}

func TestQuery_SubscriberNeverSeesStaleState(t *testing.T) {
	finishSecond := make(chan struct{})
	q := NewQuery(func(ctx context.Context, name string) (string, error) {
		if name == "second" {
			<-finishSecond
		}
		return name, nil
	}, QueryOptions[string]{})

	held := make(chan struct{})
	release := make(chan struct{})
	var holdOnce sync.Once
	var mu sync.Mutex
	var last State[string]
	q.Subscribe(func(s State[string]) {
		if s.HasData && !s.Loading && s.Data == "first" {
			holdOnce.Do(func() {
				close(held)
				<-release
			})
		}
		mu.Lock()
		last = s
		mu.Unlock()
	})
	lastSeen := func() State[string] {
		mu.Lock()
		defer mu.Unlock()
		return last
	}

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = q.Execute(context.Background(), "first")
	}()
	<-held

	secondDone := make(chan struct{})
	go func() {
		defer close(secondDone)
		_, _ = q.Execute(context.Background(), "second")
	}()
	require.Eventually(t, func() bool { return q.State().Loading }, time.Second, time.Millisecond)

	// The listener is still busy with the first call's result while the
	// second call has already started.
	close(release)
	<-firstDone
	require.Eventually(t, func() bool { return lastSeen() == q.State() }, time.Second, time.Millisecond)
	assert.Equal(t, State[string]{Data: "first", HasData: true, Loading: true}, lastSeen())

	close(finishSecond)
	<-secondDone
	assert.Equal(t, State[string]{Data: "second", HasData: true}, lastSeen())
}
