package repository

import (
	"context"

	"github.com/compozy/subsync/internal/service"
	"github.com/stretchr/testify/mock"
)

// Mock for service.Invoker
type mockInvoker struct{ mock.Mock }

func (m *mockInvoker) Invoke(ctx context.Context, inv service.Invocation) (*service.Result, error) {
	args := m.Called(ctx, inv)
	if res := args.Get(0); res != nil {
		return res.(*service.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

// invocation matches an Invocation by its argument vector only.
func invocation(args ...string) any {
	return mock.MatchedBy(func(inv service.Invocation) bool {
		if len(inv.Args) != len(args) {
			return false
		}
		for i := range args {
			if inv.Args[i] != args[i] {
				return false
			}
		}
		return true
	})
}

// recordingProgress records PathProgress callbacks in order.
type recordingProgress struct {
	events []string
}

func (p *recordingProgress) PathStarted(path string) {
	p.events = append(p.events, "start:"+path)
}

func (p *recordingProgress) PathFinished(path string, err error) {
	if err != nil {
		p.events = append(p.events, "fail:"+path)
		return
	}
	p.events = append(p.events, "done:"+path)
}
