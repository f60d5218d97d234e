//go:build windows

package desktop

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"github.com/awsl-project/hostlink/internal/host"
	"github.com/awsl-project/hostlink/internal/launcher"
)

//go:embed icon.ico
var iconData []byte

// TrayMenu is the host menu on Windows. Entries created before the tray is
// ready are queued and added in onReady. Clicks are posted as MenuClicked.
type TrayMenu struct {
	post     func(host.Event)
	messages launcher.Messages
	quit     func()
	logger   *zap.Logger
	registry *host.Registry

	mu         sync.Mutex
	ready      bool
	pending    []host.MenuItem
	menuStatus *systray.MenuItem
	menuAddr   *systray.MenuItem
	menuQuit   *systray.MenuItem
}

// NewTrayMenu creates the tray menu.
func NewTrayMenu(post func(host.Event), messages launcher.Messages, quit func(), logger *zap.Logger) *TrayMenu {
	return &TrayMenu{
		post:     post,
		messages: messages,
		quit:     quit,
		logger:   logger,
		registry: host.NewRegistry(),
	}
}

// Start runs the tray loop. It blocks until the tray exits.
func (t *TrayMenu) Start() {
	systray.Run(t.onReady, t.onExit)
}

// Create adds a menu entry. IDs must be unique.
func (t *TrayMenu) Create(item host.MenuItem) error {
	if err := t.registry.Create(item); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ready {
		t.pending = append(t.pending, item)
		return nil
	}
	t.add(item)
	return nil
}

// Items returns the registered entries.
func (t *TrayMenu) Items() []host.MenuItem {
	return t.registry.Items()
}

func (t *TrayMenu) onReady() {
	t.logger.Info("Initializing system tray")

	systray.SetIcon(iconData)
	systray.SetTitle(t.messages.GetMessage("PRODUCT_NAME"))
	systray.SetTooltip(t.messages.GetMessage("TRAY_TOOLTIP"))

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, item := range t.pending {
		t.add(item)
	}
	t.pending = nil

	systray.AddSeparator()
	t.menuStatus = systray.AddMenuItem("Service: starting", "Background service state")
	t.menuStatus.Disable()
	t.menuAddr = systray.AddMenuItem("Address: -", "Remote access address")
	t.menuAddr.Disable()
	systray.AddSeparator()
	t.menuQuit = systray.AddMenuItem("Quit", "Quit "+t.messages.GetMessage("PRODUCT_NAME"))
	t.ready = true

	go func() {
		<-t.menuQuit.ClickedCh
		t.logger.Info("Quit clicked")
		if t.quit != nil {
			t.quit()
		}
		systray.Quit()
	}()
}

func (t *TrayMenu) onExit() {
	t.logger.Info("System tray exited")
}

// add must be called with t.mu held.
func (t *TrayMenu) add(item host.MenuItem) {
	mi := systray.AddMenuItem(item.Title, item.Title)
	go func() {
		for range mi.ClickedCh {
			t.logger.Debug("Menu item clicked", zap.String("id", item.ID))
			t.post(host.Event{Kind: host.MenuClicked, MenuItemID: item.ID})
		}
	}()
}

// UpdateStatus refreshes the read-only status entries.
func (t *TrayMenu) UpdateStatus(st Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ready {
		return
	}
	t.menuStatus.SetTitle(fmt.Sprintf("Service: %s (#%d)", st.State, st.Generation))
	if st.Address != "" {
		t.menuAddr.SetTitle(fmt.Sprintf("Address: %s", st.Address))
	} else {
		t.menuAddr.SetTitle("Address: -")
	}
}
