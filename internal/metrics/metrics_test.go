package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awsl-project/hostlink/internal/lifecycle"
)

type nopSurface struct{ shows, opens int }

func (s *nopSurface) Show() { s.shows++ }
func (s *nopSurface) Open() { s.opens++ }

func TestCollector_ObserveTransition(t *testing.T) {
	c := New()

	c.ObserveTransition(lifecycle.Transition{Kind: lifecycle.TransitionBoot, To: lifecycle.Active, Generation: 1})
	assert.Equal(t, 1.0, testutil.ToFloat64(c.live))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.generation))

	c.ObserveTransition(lifecycle.Transition{Kind: lifecycle.TransitionSuspend, To: lifecycle.Suspended, Generation: 1})
	assert.Equal(t, 0.0, testutil.ToFloat64(c.live))

	c.ObserveTransition(lifecycle.Transition{Kind: lifecycle.TransitionResume, To: lifecycle.Active, Generation: 2, Err: errors.New("bind")})
	assert.Equal(t, 1.0, testutil.ToFloat64(c.live))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.generation))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("boot")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("suspend")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("resume")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("resume")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.failures.WithLabelValues("boot")))
}

func TestCollector_InstrumentSurface(t *testing.T) {
	c := New()
	inner := &nopSurface{}
	s := c.InstrumentSurface(inner)

	s.Show()
	s.Open()
	s.Open()

	assert.Equal(t, 1, inner.shows)
	assert.Equal(t, 2, inner.opens)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.presentations.WithLabelValues("show")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.presentations.WithLabelValues("open")))
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.ObserveTransition(lifecycle.Transition{Kind: lifecycle.TransitionBoot, To: lifecycle.Active, Generation: 1})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `hostlink_lifecycle_transitions_total{transition="boot"} 1`), body)
	assert.Contains(t, body, "hostlink_service_live 1")
}

func TestCollector_RegistryIsPrivate(t *testing.T) {
	a, b := New(), New()
	a.ObserveTransition(lifecycle.Transition{Kind: lifecycle.TransitionBoot, To: lifecycle.Active, Generation: 1})
	a.ObserveTransition(lifecycle.Transition{Kind: lifecycle.TransitionSuspend, To: lifecycle.Suspended, Generation: 1})

	n, err := testutil.GatherAndCount(a.Registry(), "hostlink_lifecycle_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = testutil.GatherAndCount(b.Registry(), "hostlink_lifecycle_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 0, n, "collectors do not share series")
}
