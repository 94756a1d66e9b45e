package capture

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opd-ai/gencamsrc/device/devicetest"
)

// testFixture wires a simulated camera to an allocated pool, a session and
// a filled-frame queue, the way a source does at startup.
type testFixture struct {
	cam     *devicetest.Camera
	pool    *Pool
	session *Session
	queue   *FilledQueue
}

func newFixture(t *testing.T, count int) *testFixture {
	t.Helper()
	cam := devicetest.New()
	require.NoError(t, cam.Open(""))

	pool := NewPool(cam, count, false)
	queue := NewFilledQueue(count)
	require.NoError(t, pool.Allocate(queue))

	return &testFixture{
		cam:     cam,
		pool:    pool,
		session: NewSession(cam, pool),
		queue:   queue,
	}
}

// fakeRunState is a settable pipeline run state for dispatcher tests.
type fakeRunState struct{ playing atomic.Bool }

func newRunState(playing bool) *fakeRunState {
	r := &fakeRunState{}
	r.playing.Store(playing)
	return r
}

func (r *fakeRunState) Playing() bool { return r.playing.Load() }
