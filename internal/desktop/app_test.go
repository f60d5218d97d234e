package desktop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/awsl-project/hostlink/internal/app"
	"github.com/awsl-project/hostlink/internal/host"
	"github.com/awsl-project/hostlink/internal/launcher"
	"github.com/awsl-project/hostlink/internal/lifecycle"
	"github.com/awsl-project/hostlink/internal/manifest"
)

type countingSurface struct{ shows, opens int }

func (s *countingSurface) Show() { s.shows++ }
func (s *countingSurface) Open() { s.opens++ }

type stubService struct{ disposed bool }

func (s *stubService) Initialize() error { return nil }
func (s *stubService) Dispose() error    { s.disposed = true; return nil }

func bootWith(bus *host.Bus, services *[]*stubService) BootFunc {
	return func(ctx context.Context) (*app.Runtime, error) {
		m, err := manifest.Parse([]byte(`{"app":{"background":{}}}`))
		if err != nil {
			return nil, err
		}
		return app.Boot(app.Deps{
			Manifest: m,
			Surface:  &countingSurface{},
			Menus:    host.NewRegistry(),
			Bus:      bus,
			Messages: stubMessages{},
			Factory: func(launcher.Launcher) lifecycle.Service {
				svc := &stubService{}
				*services = append(*services, svc)
				return svc
			},
		})
	}
}

type stubMessages struct{}

func (stubMessages) GetMessage(string) string { return "New Window" }

func TestApp_StartupPostShutdown(t *testing.T) {
	bus := host.NewBus(0)
	var services []*stubService
	a := NewApp(bus, bootWith(bus, &services), zap.NewNop())

	assert.Equal(t, string(lifecycle.Uninitialized), a.GetStatus().State)

	a.Startup(context.Background())
	st := a.GetStatus()
	assert.Equal(t, string(manifest.HostManaged), st.Mode)
	assert.Equal(t, string(lifecycle.Active), st.State)
	assert.Equal(t, uint64(1), st.Generation)

	a.Post(host.Event{Kind: host.Suspend})
	require.Eventually(t, func() bool {
		return a.GetStatus().State == string(lifecycle.Suspended)
	}, time.Second, 5*time.Millisecond)

	a.Post(host.Event{Kind: host.SuspendCanceled})
	require.Eventually(t, func() bool {
		return a.GetStatus().Generation == 2
	}, time.Second, 5*time.Millisecond)

	a.Shutdown(context.Background())
	require.Len(t, services, 2)
	assert.True(t, services[0].disposed)
	assert.True(t, services[1].disposed)
}

func TestApp_BootError(t *testing.T) {
	bus := host.NewBus(0)
	a := NewApp(bus, func(context.Context) (*app.Runtime, error) {
		return nil, errors.New("no surface")
	}, zap.NewNop())

	a.Startup(context.Background())
	assert.Equal(t, string(lifecycle.Uninitialized), a.GetStatus().State)
	a.Shutdown(context.Background())
}
