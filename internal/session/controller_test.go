package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"mealchat/internal/mealapi"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// fakeRequester answers from a queue of canned results.
type fakeRequester struct {
	mu      sync.Mutex
	calls   []string
	results []fakeResult
	onCall  func(message string)
}

type fakeResult struct {
	s   mealapi.Suggestion
	err error
}

func (f *fakeRequester) Chat(_ context.Context, message string) (mealapi.Suggestion, error) {
	f.mu.Lock()
	f.calls = append(f.calls, message)
	var r fakeResult
	if len(f.results) > 0 {
		r, f.results = f.results[0], f.results[1:]
	}
	hook := f.onCall
	f.mu.Unlock()
	if hook != nil {
		hook(message)
	}
	return r.s, r.err
}

func (f *fakeRequester) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

var chickenRice = mealapi.Suggestion{
	MealName:        "Chicken Rice Bowl",
	Description:     "A simple one-pot meal.",
	IngredientsUsed: []string{"chicken", "rice"},
}

func TestSubmit_AppendsUserMessageSynchronously(t *testing.T) {
	c := New(&fakeRequester{})
	c.SetInput("  chicken, rice  ")

	p, err := c.Submit("  chicken, rice  ")
	require.NoError(t, err)
	assert.Equal(t, "chicken, rice", p.Message)

	got := c.Snapshot()
	want := State{
		Messages:   []Message{{Text: "chicken, rice", Sender: SenderUser}},
		InputValue: "",
		IsLoading:  true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, c.Awaiting())
}

func TestSubmit_EmptyOrWhitespaceIsNoOp(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n", " \r\n "} {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			req := &fakeRequester{}
			c := New(req)
			c.SetInput(in)
			rev := c.Revision()

			notified := 0
			defer c.Subscribe(func(State) { notified++ })()

			_, err := c.Submit(in)
			assert.ErrorIs(t, err, ErrEmptyInput)

			s := c.Snapshot()
			assert.Empty(t, s.Messages)
			assert.Equal(t, in, s.InputValue)
			assert.False(t, s.IsLoading)
			assert.Equal(t, rev, c.Revision())
			assert.Zero(t, notified)
			assert.Empty(t, req.Calls())
		})
	}
}

func TestSubmit_WhileAwaitingIsNoOp(t *testing.T) {
	c := New(&fakeRequester{})
	p, err := c.Submit("tofu")
	require.NoError(t, err)

	_, err = c.Submit("beans")
	assert.ErrorIs(t, err, ErrBusy)

	s := c.Snapshot()
	require.Len(t, s.Messages, 1)
	assert.Equal(t, "tofu", s.Messages[0].Text)

	require.NoError(t, c.Resolve(p, Succeeded(chickenRice)))
	_, err = c.Submit("beans")
	assert.NoError(t, err)
}

func TestSetInput_IgnoredWhileAwaiting(t *testing.T) {
	c := New(&fakeRequester{})
	_, err := c.Submit("tofu")
	require.NoError(t, err)

	c.SetInput("typing while waiting")
	assert.Equal(t, "", c.Snapshot().InputValue)
}

func TestResolve_SuccessScenario(t *testing.T) {
	c := New(&fakeRequester{})
	p, err := c.Submit("chicken, rice")
	require.NoError(t, err)

	require.NoError(t, c.Resolve(p, Succeeded(chickenRice)))

	want := []Message{
		{Text: "chicken, rice", Sender: SenderUser},
		{Text: "Chicken Rice Bowl\n\nA simple one-pot meal.", Sender: SenderBot},
	}
	s := c.Snapshot()
	if diff := cmp.Diff(want, s.Messages); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, s.IsLoading)
}

func TestResolve_FailureKindsCollapse(t *testing.T) {
	failures := map[string]error{
		"transport": fmt.Errorf("%w: connection refused", mealapi.ErrTransport),
		"status":    &mealapi.StatusError{Code: 500},
		"payload":   fmt.Errorf("%w: unexpected end of JSON input", mealapi.ErrPayload),
		"other":     errors.New("anything else"),
	}
	for name, ferr := range failures {
		t.Run(name, func(t *testing.T) {
			c := New(&fakeRequester{})
			p, err := c.Submit("tofu")
			require.NoError(t, err)
			require.NoError(t, c.Resolve(p, Failed(ferr)))

			want := []Message{
				{Text: "tofu", Sender: SenderUser},
				{Text: FallbackText, Sender: SenderBot},
			}
			if diff := cmp.Diff(want, c.Snapshot().Messages); diff != "" {
				t.Errorf("log mismatch (-want +got):\n%s", diff)
			}
			assert.False(t, c.Awaiting())
		})
	}
}

func TestResolve_LogsFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := New(&fakeRequester{}, WithLogger(zap.New(core)))

	p, err := c.Submit("tofu")
	require.NoError(t, err)
	require.NoError(t, c.Resolve(p, Failed(&mealapi.StatusError{Code: 500})))

	entries := logs.FilterMessage("failed to fetch response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	assert.Equal(t, "status", entries[0].ContextMap()["kind"])
}

func TestResolve_ExactlyOnce(t *testing.T) {
	c := New(&fakeRequester{})
	p, err := c.Submit("tofu")
	require.NoError(t, err)

	require.NoError(t, c.Resolve(p, Succeeded(chickenRice)))
	assert.ErrorIs(t, c.Resolve(p, Failed(errors.New("late"))), ErrNotAwaiting)
	assert.ErrorIs(t, c.Resolve(Pending{}, Succeeded(chickenRice)), ErrNotAwaiting)

	s := c.Snapshot()
	assert.Len(t, s.Messages, 2)
	assert.False(t, s.IsLoading)
}

func TestResolve_StaleTicketIgnored(t *testing.T) {
	c := New(&fakeRequester{})
	first, err := c.Submit("one")
	require.NoError(t, err)
	require.NoError(t, c.Resolve(first, Succeeded(chickenRice)))

	second, err := c.Submit("two")
	require.NoError(t, err)

	assert.ErrorIs(t, c.Resolve(first, Succeeded(chickenRice)), ErrNotAwaiting)
	assert.True(t, c.Awaiting())
	require.NoError(t, c.Resolve(second, Failed(errors.New("x"))))
	assert.Len(t, c.Snapshot().Messages, 4)
}

func TestSubscribe_FiresAfterEachCommit(t *testing.T) {
	c := New(&fakeRequester{})

	var seen []State
	unsubscribe := c.Subscribe(func(s State) { seen = append(seen, s) })

	p, err := c.Submit("eggs")
	require.NoError(t, err)
	require.NoError(t, c.Resolve(p, Succeeded(chickenRice)))

	require.Len(t, seen, 2)
	assert.True(t, seen[0].IsLoading)
	assert.Len(t, seen[0].Messages, 1)
	assert.False(t, seen[1].IsLoading)
	assert.Len(t, seen[1].Messages, 2)
	assert.Equal(t, uint64(2), c.Revision())

	unsubscribe()
	_, err = c.Submit("more")
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}

func TestSnapshot_IsCopy(t *testing.T) {
	c := New(&fakeRequester{})
	_, err := c.Submit("eggs")
	require.NoError(t, err)

	s := c.Snapshot()
	s.Messages[0].Text = "mutated"
	assert.Equal(t, "eggs", c.Snapshot().Messages[0].Text)
}

func TestExchange_UserMessageVisibleBeforeRequest(t *testing.T) {
	req := &fakeRequester{results: []fakeResult{{s: chickenRice}}}
	c := New(req)

	var atCall State
	req.onCall = func(string) { atCall = c.Snapshot() }

	require.NoError(t, c.Exchange(context.Background(), "chicken, rice"))

	require.Len(t, atCall.Messages, 1)
	assert.Equal(t, Message{Text: "chicken, rice", Sender: SenderUser}, atCall.Messages[0])
	assert.True(t, atCall.IsLoading)
	assert.Equal(t, []string{"chicken, rice"}, req.Calls())
	assert.Len(t, c.Snapshot().Messages, 2)
}

func TestExchange_ReturnsRequestError(t *testing.T) {
	boom := errors.New("boom")
	req := &fakeRequester{results: []fakeResult{{err: boom}}}
	c := New(req)

	err := c.Exchange(context.Background(), "tofu")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, FallbackText, c.Snapshot().Messages[1].Text)

	assert.ErrorIs(t, c.Exchange(context.Background(), "  "), ErrEmptyInput)
	assert.Len(t, req.Calls(), 1)
}

func TestExchange_AgainstHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := mealapi.NewClient(srv.URL)
	defer client.Close()

	c := New(client)
	err := c.Exchange(context.Background(), "tofu")
	assert.ErrorIs(t, err, mealapi.ErrStatus)

	want := []Message{
		{Text: "tofu", Sender: SenderUser},
		{Text: FallbackText, Sender: SenderBot},
	}
	if diff := cmp.Diff(want, c.Snapshot().Messages); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
}

func TestExchange_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{not json")
	}))
	defer srv.Close()

	client := mealapi.NewClient(srv.URL)
	defer client.Close()

	c := New(client)
	assert.ErrorIs(t, c.Exchange(context.Background(), "eggs"), mealapi.ErrPayload)
	assert.Equal(t, FallbackText, c.Snapshot().Messages[1].Text)
}

func TestDispatch_NoRequester(t *testing.T) {
	c := New(nil)
	p, err := c.Submit("eggs")
	require.NoError(t, err)
	out := c.Dispatch(context.Background(), p)
	assert.False(t, out.OK())
	assert.Equal(t, FallbackText, out.BotText())
}

func TestWithID(t *testing.T) {
	assert.Equal(t, "fixed", New(nil, WithID("fixed")).ID())
	assert.NotEmpty(t, New(nil).ID())
}
