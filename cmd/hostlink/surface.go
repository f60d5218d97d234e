package main

import (
	"github.com/pkg/browser"
	"go.uber.org/zap"
)

// browserSurface presents sessions as the status page in the user's browser.
type browserSurface struct {
	url    func() string
	open   func(string) error
	logger *zap.Logger
}

func newBrowserSurface(url func() string, logger *zap.Logger) *browserSurface {
	return &browserSurface{url: url, open: browser.OpenURL, logger: logger}
}

func (s *browserSurface) Show() { s.present("show") }

func (s *browserSurface) Open() { s.present("open") }

func (s *browserSurface) present(kind string) {
	u := s.url()
	if u == "" {
		s.logger.Warn("No address to present", zap.String("kind", kind))
		return
	}
	if err := s.open(u); err != nil {
		s.logger.Warn("Failed to open browser", zap.String("url", u), zap.Error(err))
	}
}
