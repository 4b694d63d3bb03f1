package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/scheduler"
)

type armCall struct {
	fireAt  time.Time
	payload model.Payload
}

type fakeDispatcher struct {
	status      bool
	statusErr   error
	request     bool
	requestErr  error
	channelErr  error
	failKinds   map[model.TriggerKind]bool
	disarmErrs  map[string]error
	requested   int
	channels    []model.ChannelConfig
	arms        []armCall
	armed       map[string]bool
	disarmCalls []string
	next        int
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{status: true, armed: make(map[string]bool)}
}

func (f *fakeDispatcher) PermissionStatus(context.Context) (bool, error) {
	return f.status, f.statusErr
}

func (f *fakeDispatcher) RequestPermission(context.Context) (bool, error) {
	f.requested++
	return f.request, f.requestErr
}

func (f *fakeDispatcher) EnsureChannel(_ context.Context, cfg model.ChannelConfig) error {
	if f.channelErr != nil {
		return f.channelErr
	}
	f.channels = append(f.channels, cfg)
	return nil
}

func (f *fakeDispatcher) Arm(_ context.Context, fireAt time.Time, p model.Payload) (string, error) {
	f.arms = append(f.arms, armCall{fireAt: fireAt, payload: p})
	if f.failKinds[p.Kind] {
		return "", errors.New("dispatcher unavailable")
	}
	f.next++
	h := fmt.Sprintf("h-%d", f.next)
	f.armed[h] = true
	return h, nil
}

func (f *fakeDispatcher) Disarm(_ context.Context, handle string) error {
	f.disarmCalls = append(f.disarmCalls, handle)
	if err, ok := f.disarmErrs[handle]; ok {
		return err
	}
	if !f.armed[handle] {
		return scheduler.ErrUnknownHandle
	}
	delete(f.armed, handle)
	return nil
}

func (f *fakeDispatcher) DisarmAll(context.Context) (int, error) {
	n := len(f.armed)
	f.armed = make(map[string]bool)
	return n, nil
}
