package notify

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sandeepkv93/remindd/internal/metrics"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(d *fakeDispatcher, opts ...Option) *Scheduler {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewScheduler(d, NewGate(d, DefaultChannel, nil), opts...)
}

func TestScheduleArmsBothTriggersInOrder(t *testing.T) {
	d := newFakeDispatcher()
	handles := newTestScheduler(d).Schedule(t.Context(), taskDueIn(2*time.Hour))

	assert.Equal(t, []string{"h-1", "h-2"}, handles)
	require.Len(t, d.arms, 2)
	assert.Equal(t, model.TriggerKindReminder, d.arms[0].payload.Kind)
	assert.Equal(t, model.TriggerKindDeadline, d.arms[1].payload.Kind)
}

func TestScheduleWithoutPermissionArmsNothing(t *testing.T) {
	d := newFakeDispatcher()
	d.status = false
	handles := newTestScheduler(d).Schedule(t.Context(), taskDueIn(2*time.Hour))

	assert.NotNil(t, handles)
	assert.Empty(t, handles)
	assert.Empty(t, d.arms)
}

func TestScheduleIsBestEffortPerTrigger(t *testing.T) {
	d := newFakeDispatcher()
	d.failKinds = map[model.TriggerKind]bool{model.TriggerKindReminder: true}
	reg := prometheus.NewRegistry()
	rec := metrics.NewPromMetrics(reg)

	handles := newTestScheduler(d, WithMetrics(rec)).Schedule(t.Context(), taskDueIn(2*time.Hour))

	assert.Equal(t, []string{"h-1"}, handles)
	assert.Len(t, d.arms, 2, "deadline must still be attempted after the reminder failed")

	count, err := testutil.GatherAndCount(reg, "remindd_alarms_arm_failed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestScheduleOverdueTaskArmsNothing(t *testing.T) {
	d := newFakeDispatcher()
	handles := newTestScheduler(d).Schedule(t.Context(), taskDueIn(-10*time.Minute))
	assert.Empty(t, handles)
	assert.Empty(t, d.arms)
}

func TestScheduleTest(t *testing.T) {
	d := newFakeDispatcher()
	handle, err := newTestScheduler(d).ScheduleTest(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "h-1", handle)
	assert.True(t, d.arms[0].fireAt.Equal(fixedNow.Add(TestDelay)))
	assert.Equal(t, model.TriggerKindTest, d.arms[0].payload.Kind)

	denied := newFakeDispatcher()
	denied.status = false
	_, err = newTestScheduler(denied).ScheduleTest(t.Context())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
