package session

//
// manager.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
	"gitlab.com/kabes/go-chat/internal/common"
)

// Policy define what happen when session is created for user that already
// has live session.
type Policy string

const (
	// PolicyReuse refresh and return existing session.
	PolicyReuse = Policy("reuse")
	// PolicyRotate replace id of existing session; old id stop being valid.
	PolicyRotate = Policy("rotate")
)

const (
	DefaultAliveTime     = 30 * time.Second
	DefaultSweepInterval = time.Second
)

var ErrSweeperStopped = aerr.NewSimple("session sweeper stopped unexpectedly").
	WithTag(aerr.InternalError)

type Config struct {
	AliveTime     time.Duration
	SweepInterval time.Duration
	Policy        Policy
}

func (c *Config) validate() error {
	if c.AliveTime <= 0 {
		return aerr.ErrValidation.WithUserMsg("session alive time must be positive")
	}

	if c.SweepInterval <= 0 {
		return aerr.ErrValidation.WithUserMsg("session sweep interval must be positive")
	}

	switch c.Policy {
	case "":
		c.Policy = PolicyReuse
	case PolicyReuse, PolicyRotate:
	default:
		return aerr.ErrValidation.WithUserMsg("unknown session policy %q", c.Policy)
	}

	return nil
}

//-------------------------------------------------------------

// Session bind session id to authenticated user.
type Session struct {
	ID           string
	UserID       string
	LastActivity time.Time
}

func (s Session) MarshalZerologObject(event *zerolog.Event) {
	event.Str(common.LogKeySessionID, s.ID).
		Str(common.LogKeyUserID, s.UserID).
		Time("last_activity", s.LastActivity)
}

//-------------------------------------------------------------

type Option func(*Manager)

// WithClock replace time source used for activity and expiration.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithRegisterer register session metrics in reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		m.metrics = newMetrics(reg)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

//-------------------------------------------------------------

// Manager is the only owner of live sessions. Both indexes are guarded by mu
// and always updated together.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session // session id -> session
	users    map[string]string   // user id -> session id
	ids      *idGenerator

	listenersMu sync.RWMutex
	listeners   []func(sessionID string)

	cfg     Config
	now     func() time.Time
	metrics *metrics
	logger  zerolog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
	started   bool
}

func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, aerr.Wrapf(err, "invalid session manager configuration")
	}

	mgr := &Manager{
		sessions: make(map[string]*Session),
		users:    make(map[string]string),
		ids:      newIDGenerator(),
		cfg:      cfg,
		now:      time.Now,
		logger:   log.Logger.With().Str("module", "session").Logger(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, o := range opts {
		o(mgr)
	}

	if mgr.metrics == nil {
		mgr.metrics = newMetrics(nil)
	}

	if cfg.SweepInterval > cfg.AliveTime {
		mgr.logger.Warn().
			Msgf("SessionManager: sweep_interval=%s is longer than alive_time=%s; expiration will be delayed",
				cfg.SweepInterval, cfg.AliveTime)
	}

	return mgr, nil
}

// CreateSession return session for user. When user has already live session it
// is refreshed and returned (or re-keyed when rotate policy is set).
func (m *Manager) CreateSession(userID string) Session {
	m.mu.Lock()
	sess, replaced := m.createLocked(userID)
	m.mu.Unlock()

	if replaced != "" {
		m.notifyEnded(replaced)
	}

	return sess
}

// createLocked create or refresh session for user. Return also id that stop
// being valid after rotation. Must be called under mu.
func (m *Manager) createLocked(userID string) (Session, string) {
	now := m.now()

	if sid, ok := m.users[userID]; ok {
		sess := m.sessions[sid]
		sess.LastActivity = now

		if m.cfg.Policy != PolicyRotate {
			return *sess, ""
		}

		delete(m.sessions, sid)

		sess.ID = m.newIDLocked()
		m.sessions[sess.ID] = sess
		m.users[userID] = sess.ID
		m.metrics.created.Inc()

		return *sess, sid
	}

	sess := &Session{
		ID:           m.newIDLocked(),
		UserID:       userID,
		LastActivity: now,
	}

	m.sessions[sess.ID] = sess
	m.users[userID] = sess.ID

	m.metrics.created.Inc()
	m.metrics.active.Inc()

	return *sess, ""
}

// SessionExists check is session id live.
func (m *Manager) SessionExists(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.sessions[sessionID]

	return ok
}

// RenewLastActivity set last activity time of session to now. Return false
// when session not exists.
func (m *Manager) RenewLastActivity(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return false
	}

	sess.LastActivity = m.now()

	return true
}

// GetUserID put into `out` id of user owning session. Return false and leave
// `out` untouched when session not exists or out is nil.
func (m *Manager) GetUserID(sessionID string, out *string) bool {
	if out == nil {
		m.logger.Warn().Msg("SessionManager: GetUserID called with nil destination")

		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return false
	}

	*out = sess.UserID

	return true
}

// DeleteSession remove session. Return true only when session existed.
func (m *Manager) DeleteSession(sessionID string) bool {
	m.mu.Lock()

	sess, ok := m.sessions[sessionID]
	if ok {
		m.removeLocked(sess)
		m.metrics.deleted.Inc()
	}

	m.mu.Unlock()

	if ok {
		m.notifyEnded(sessionID)
	}

	return ok
}

// OnSessionEnd register `fn` called with id of every session that stop
// being valid: deleted, expired or replaced by rotation. `fn` is called
// without manager lock held, so it may call manager methods.
func (m *Manager) OnSessionEnd(fn func(sessionID string)) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()

	m.listeners = append(m.listeners, fn)
}

func (m *Manager) notifyEnded(ids ...string) {
	m.listenersMu.RLock()
	listeners := slices.Clone(m.listeners)
	m.listenersMu.RUnlock()

	for _, id := range ids {
		for _, fn := range listeners {
			fn(id)
		}
	}
}

// Count return number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// Sessions return copy of all live sessions ordered by user id.
func (m *Manager) Sessions() []Session {
	m.mu.Lock()

	res := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		res = append(res, *s)
	}

	m.mu.Unlock()

	slices.SortFunc(res, func(a, b Session) int { return strings.Compare(a.UserID, b.UserID) })

	return res
}

// Sweep remove all sessions idle longer than alive time. Return number of
// removed sessions.
func (m *Manager) Sweep() int {
	start := time.Now()

	var expired []Session

	m.mu.Lock()

	now := m.now()

	for _, sess := range m.sessions {
		if now.Sub(sess.LastActivity) > m.cfg.AliveTime {
			expired = append(expired, *sess)
			m.removeLocked(sess)
		}
	}

	m.mu.Unlock()

	m.metrics.sweepDuration.Observe(time.Since(start).Seconds())

	if len(expired) > 0 {
		m.metrics.expired.Add(float64(len(expired)))

		for _, s := range expired {
			m.logger.Debug().Object("session", s).Msg("SessionManager: session expired")
			m.notifyEnded(s.ID)
		}
	}

	return len(expired)
}

// RunExpirationSweep periodically remove expired sessions. Block until ctx is
// cancelled or manager is shut down.
func (m *Manager) RunExpirationSweep(ctx context.Context) {
	logger := m.logger
	logger.Info().Msgf("SessionManager: start expiration sweeper; alive_time=%s interval=%s",
		m.cfg.AliveTime, m.cfg.SweepInterval)

	ctx, finish := common.NewCtxEventLog(ctx, "session sweeper", "worker")
	defer finish()

	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("SessionManager: sweeper stopped by context")

			return
		case <-m.stop:
			logger.Debug().Msg("SessionManager: sweeper stopped")

			return
		case <-ticker.C:
		}

		region := common.NewRegion(ctx, "session sweep")
		removed := m.Sweep()
		region.End()

		if removed > 0 {
			taskid := xid.New().String()
			logger.Info().Str(common.LogKeyTaskID, taskid).
				Msgf("SessionManager: expired sessions removed; count=%d", removed)
			common.EventLogPrintf(ctx, "sweep task_id=%s removed=%d", taskid, removed)
		}
	}
}

// Start run expiration sweeper in background. Next calls are ignored.
func (m *Manager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		m.mu.Lock()
		m.started = true
		m.mu.Unlock()

		go func() {
			defer close(m.done)

			m.RunExpirationSweep(ctx)
		}()
	})
}

// Shutdown stop sweeper and wait for its end.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	started := m.started
	m.mu.Unlock()

	if !started {
		return nil
	}

	select {
	case <-m.done:
		m.logger.Debug().Msg("SessionManager: stopped")

		return nil
	case <-ctx.Done():
		return aerr.Wrapf(ctx.Err(), "wait for session sweeper failed")
	}
}

// HealthCheck fail when sweeper was started and exited without shutdown.
func (m *Manager) HealthCheck(_ context.Context) error {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()

	if !started {
		return nil
	}

	select {
	case <-m.stop:
		return nil
	default:
	}

	select {
	case <-m.done:
		return ErrSweeperStopped
	default:
		return nil
	}
}

//-------------------------------------------------------------

// newIDLocked generate id not used by any live session. Must be called under mu.
func (m *Manager) newIDLocked() string {
	for {
		id := m.ids.next()
		if _, exists := m.sessions[id]; !exists {
			return id
		}
	}
}

// removeLocked delete session from both indexes. Must be called under mu.
func (m *Manager) removeLocked(sess *Session) {
	delete(m.sessions, sess.ID)

	if sid, ok := m.users[sess.UserID]; ok && sid == sess.ID {
		delete(m.users, sess.UserID)
	}

	m.metrics.active.Dec()
}
