package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestTopic() *Topic[int] {
	l := zerolog.Nop()
	return NewTopic[int]("test", &l)
}

func TestTopic_FanOutInRegistrationOrder(t *testing.T) {
	t.Parallel()

	topic := newTestTopic()
	var got []string
	topic.On(func(v int) { got = append(got, "a") })
	topic.On(func(v int) { got = append(got, "b") })
	topic.On(func(v int) { got = append(got, "c") })

	topic.Emit(1)

	require.Equal(t, []string{"a", "b", "c"}, got)
	require.Equal(t, 3, topic.Len())
}

func TestTopic_OffBySubscription(t *testing.T) {
	t.Parallel()

	topic := newTestTopic()
	var first, second int
	subA := topic.On(func(v int) { first += v })
	topic.On(func(v int) { second += v })

	require.True(t, topic.Off(subA))
	require.False(t, topic.Off(subA), "second removal is a no-op")
	require.False(t, topic.Off(Subscription{}), "zero subscription never matches")

	topic.Emit(5)

	require.Equal(t, 0, first)
	require.Equal(t, 5, second)
}

func TestTopic_SameFunctionTwiceIsTwoSubscriptions(t *testing.T) {
	t.Parallel()

	topic := newTestTopic()
	calls := 0
	fn := func(int) { calls++ }
	sub1 := topic.On(fn)
	topic.On(fn)

	topic.Emit(0)
	require.Equal(t, 2, calls)

	topic.Off(sub1)
	topic.Emit(0)
	require.Equal(t, 3, calls)
}

func TestTopic_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	t.Parallel()

	topic := newTestTopic()
	delivered := false
	topic.On(func(int) { panic("boom") })
	topic.On(func(int) { delivered = true })

	require.NotPanics(t, func() { topic.Emit(1) })
	require.True(t, delivered)
}

func TestTopic_HandlerMayUnsubscribeItselfDuringEmit(t *testing.T) {
	t.Parallel()

	topic := newTestTopic()
	calls := 0
	var sub Subscription
	sub = topic.On(func(int) {
		calls++
		topic.Off(sub)
	})

	topic.Emit(1)
	topic.Emit(1)

	require.Equal(t, 1, calls)
	require.Equal(t, 0, topic.Len())
}
