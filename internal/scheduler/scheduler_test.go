package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func probe(t *testing.T) (*actor.ActorSystem, *actor.PID, chan domain.RediscoverRequest) {
	as := actor.NewActorSystem()
	t.Cleanup(as.Shutdown)

	received := make(chan domain.RediscoverRequest, 8)
	pid := as.Root.Spawn(actor.PropsFromFunc(func(ctx actor.Context) {
		if msg, ok := ctx.Message().(domain.RediscoverRequest); ok {
			received <- msg
		}
	}))
	return as, pid, received
}

func TestRediscoveryJob(t *testing.T) {

	as, pid, received := probe(t)

	err := RediscoveryJob(as.Root, pid).Execute(context.Background())
	require.NoError(t, err)

	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("rediscover request not sent")
	}
}

func TestScheduleRediscovery(t *testing.T) {

	assert := assert.New(t)

	as, pid, _ := probe(t)
	s := New(zap.NewNop())

	assert.NoError(s.ScheduleRediscovery("", as.Root, pid))
	assert.Equal(0, s.Scheduled())

	assert.Error(s.ScheduleRediscovery("not a cron", as.Root, pid))
	assert.Equal(0, s.Scheduled())

	assert.NoError(s.ScheduleRediscovery("0 0 * * * *", as.Root, pid))
	assert.Equal(1, s.Scheduled())
}

func TestSchedulerFiresRediscovery(t *testing.T) {

	as, pid, received := probe(t)
	s := New(zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.ScheduleRediscovery("* * * * * *", as.Root, pid))
	s.Start(ctx)
	defer s.Stop(ctx)

	select {
	case <-received:
	case <-time.After(3 * time.Second):
		t.Fatal("rediscovery did not fire")
	}
}
