package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/awsl-project/hostlink/internal/host"
	"github.com/awsl-project/hostlink/internal/i18n"
	"github.com/awsl-project/hostlink/internal/launcher"
	"github.com/awsl-project/hostlink/internal/lifecycle"
	"github.com/awsl-project/hostlink/internal/manifest"
	"github.com/awsl-project/hostlink/internal/remoteaccess"
)

type fakeSurface struct{ shows, opens int }

func (s *fakeSurface) Show() { s.shows++ }
func (s *fakeSurface) Open() { s.opens++ }

type fakeService struct {
	launcher launcher.Launcher
	inits    int
	disposes int
	initErr  error
}

func (s *fakeService) Initialize() error { s.inits++; return s.initErr }
func (s *fakeService) Dispose() error    { s.disposes++; return nil }

type fixture struct {
	surface  *fakeSurface
	menus    *host.Registry
	bus      *host.Bus
	services []*fakeService
	initErr  error
}

func newFixture() *fixture {
	return &fixture{surface: &fakeSurface{}, menus: host.NewRegistry(), bus: host.NewBus(0)}
}

func (f *fixture) deps(t *testing.T, manifestJSON string) Deps {
	t.Helper()
	m, err := manifest.Parse([]byte(manifestJSON))
	require.NoError(t, err)
	catalog, err := i18n.Embedded("en")
	require.NoError(t, err)
	return Deps{
		Manifest: m,
		Surface:  f.surface,
		Menus:    f.menus,
		Bus:      f.bus,
		Messages: catalog,
		Factory: func(l launcher.Launcher) lifecycle.Service {
			svc := &fakeService{launcher: l, initErr: f.initErr}
			f.services = append(f.services, svc)
			return svc
		},
	}
}

func TestBoot_Legacy(t *testing.T) {
	f := newFixture()
	rt, err := Boot(f.deps(t, `{"name":"host"}`))
	require.NoError(t, err)

	assert.Equal(t, manifest.Legacy, rt.Mode)
	assert.IsType(t, &launcher.SingleWindow{}, rt.Launcher)
	assert.Empty(t, f.menus.Items(), "legacy hosts get no menu entry")
	assert.Equal(t, 0, f.bus.Listeners(host.Launched))
	assert.Equal(t, 0, f.bus.Listeners(host.MenuClicked))

	assert.Equal(t, lifecycle.Active, rt.Controller.State())
	require.Len(t, f.services, 1)
	assert.Equal(t, 1, f.services[0].inits)
	assert.Same(t, rt.Launcher, f.services[0].launcher)
}

func TestBoot_HostManaged(t *testing.T) {
	f := newFixture()
	rt, err := Boot(f.deps(t, `{"app":{"background":{"scripts":["bg.js"]}}}`))
	require.NoError(t, err)

	assert.Equal(t, manifest.HostManaged, rt.Mode)
	require.Len(t, f.menus.Items(), 1)
	assert.Equal(t, host.MenuItem{ID: "new-window", Contexts: []string{"launcher"}, Title: "New Window"}, f.menus.Items()[0])
	assert.Len(t, rt.Subscriptions, 4)

	f.bus.Dispatch(host.Event{Kind: host.Launched})
	f.bus.Dispatch(host.Event{Kind: host.MenuClicked, MenuItemID: "new-window"})
	f.bus.Dispatch(host.Event{Kind: host.MenuClicked, MenuItemID: "about"})
	assert.Equal(t, 2, f.surface.opens)
	assert.Len(t, f.services, 1, "launching never touches the service slot")
	assert.Equal(t, 0, f.services[0].disposes)
}

func TestBoot_SuspendResumeThroughBus(t *testing.T) {
	f := newFixture()
	rt, err := Boot(f.deps(t, `{"app":{"background":{}}}`))
	require.NoError(t, err)

	f.bus.Dispatch(host.Event{Kind: host.Suspend})
	assert.Equal(t, lifecycle.Suspended, rt.Controller.State())
	f.bus.Dispatch(host.Event{Kind: host.SuspendCanceled})
	assert.Equal(t, lifecycle.Active, rt.Controller.State())

	require.Len(t, f.services, 2)
	assert.Equal(t, 1, f.services[0].disposes)
	assert.Equal(t, 1, f.services[1].inits)
}

func TestBoot_InitializeErrorReturnsRuntime(t *testing.T) {
	f := newFixture()
	f.initErr = errors.New("address in use")

	rt, err := Boot(f.deps(t, `{}`))
	assert.ErrorIs(t, err, f.initErr)
	require.NotNil(t, rt)
	assert.Equal(t, lifecycle.Active, rt.Controller.State())
}

func TestBoot_RequiresCollaborators(t *testing.T) {
	_, err := Boot(Deps{})
	assert.Error(t, err)

	f := newFixture()
	d := f.deps(t, `{"app":{"background":true}}`)
	d.Menus = nil
	_, err = Boot(d)
	assert.Error(t, err)
}

func TestRuntime_Shutdown(t *testing.T) {
	f := newFixture()
	rt, err := Boot(f.deps(t, `{"app":{"background":{}}}`))
	require.NoError(t, err)

	require.NoError(t, rt.Shutdown())
	assert.Equal(t, 1, f.services[0].disposes)
	assert.Equal(t, 0, f.bus.Listeners(host.Suspend))
	assert.Equal(t, 0, f.bus.Listeners(host.Launched))

	require.NoError(t, rt.Shutdown(), "second shutdown is a no-op")
	assert.Equal(t, 1, f.services[0].disposes)
}

func TestBoot_RealRemoteAccessService(t *testing.T) {
	f := newFixture()
	d := f.deps(t, `{}`)
	d.Factory = nil
	d.Remote = remoteaccess.Config{Addr: "127.0.0.1:0"}

	rt, err := Boot(d)
	require.NoError(t, err)
	svc, ok := rt.Controller.Current().(*remoteaccess.Service)
	require.True(t, ok)
	assert.True(t, svc.Running())

	require.NoError(t, rt.Shutdown())
	assert.False(t, svc.Running())
}

func TestReadManifest(t *testing.T) {
	logger := zap.NewNop()
	assert.Equal(t, manifest.Legacy, manifest.DetectLaunchMode(ReadManifest("", logger)))
	assert.Equal(t, manifest.Legacy, manifest.DetectLaunchMode(ReadManifest("/does/not/exist.json", logger)))

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	assert.Equal(t, manifest.Legacy, manifest.DetectLaunchMode(ReadManifest(bad, logger)))

	good := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"app":{"background":{}}}`), 0o644))
	assert.Equal(t, manifest.HostManaged, manifest.DetectLaunchMode(ReadManifest(good, logger)))
}
