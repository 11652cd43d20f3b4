package events_test

import (
	"fmt"
	"testing"

	"github.com/ardanlabs/blocktrading/foundation/events"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFanOut(t *testing.T) {
	evts := events.New()

	const receivers = 5
	got := make([][]string, receivers)

	var wg conc.WaitGroup
	for i := 0; i < receivers; i++ {
		ch := evts.Acquire(fmt.Sprintf("viewer-%d", i))
		wg.Go(func() {
			for msg := range ch {
				got[i] = append(got[i], msg)
			}
		})
	}
	require.Equal(t, receivers, evts.Count())

	evts.Send("viewer: tx: buy_block: entry[1]")
	evts.Send("viewer: tx: set_color: entry[2]")

	evts.Shutdown()
	wg.Wait()

	require.Zero(t, evts.Count())
	for i := range got {
		require.Equal(t, []string{"viewer: tx: buy_block: entry[1]", "viewer: tx: set_color: entry[2]"}, got[i])
	}
}

func TestAcquireRelease(t *testing.T) {
	evts := events.New()

	ch := evts.Acquire("a")
	require.Equal(t, ch, evts.Acquire("a"))

	require.NoError(t, evts.Release("a"))
	_, open := <-ch
	require.False(t, open)

	require.Error(t, evts.Release("a"))
}

func TestSendDoesNotBlock(t *testing.T) {
	evts := events.New()
	ch := evts.Acquire("slow")

	for i := 0; i < 1_000; i++ {
		evts.Send("viewer: tick")
	}
	require.Len(t, ch, 100)
	require.Equal(t, uint64(900), evts.Dropped())

	evts.Shutdown()
}

func TestPublishFiltersViewerEvents(t *testing.T) {
	evts := events.New()
	ch := evts.Acquire("viewer")

	evts.Publish("state: SubmitTransaction: %s: rejected", "buy_block")
	evts.Publish("viewer: tx: %s: entry[%d]", "buy_block", 1)

	require.Len(t, ch, 1)
	require.Equal(t, "viewer: tx: buy_block: entry[1]", <-ch)

	evts.Shutdown()
}
