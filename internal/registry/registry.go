// Package registry owns the session slots of the gateway: one backend
// handle per session name, guarded by a per-name mutex so concurrent
// connects cannot race a second handle into existence.
package registry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/matheus3301/wppapi/internal/bus"
	"github.com/matheus3301/wppapi/internal/session"
	"github.com/matheus3301/wppapi/internal/status"
	"github.com/matheus3301/wppapi/internal/wa"
)

// DefaultCredentialTicks bounds AwaitCredential when the caller passes a
// non-positive budget. Ticks are one second each.
const DefaultCredentialTicks = 60

// snapshotLoadAttempts bounds the chat list retries after connect.
const snapshotLoadAttempts = 3

// slot is one registered session. The registry owns the backend handle
// exclusively; callers only ever see it through Ready().
type slot struct {
	name      string
	createdAt time.Time
	machine   *status.Machine
	client    wa.ChatClient
	snapshot  atomic.Pointer[wa.Snapshot]

	// cred receives the first credential payload, once.
	cred chan wa.CredentialEvent

	ctx    context.Context
	cancel context.CancelFunc
}

// Registry is the session lifecycle controller.
type Registry struct {
	factory wa.NewClientFunc
	bus     *bus.Bus
	logger  *zap.Logger
	tick    time.Duration

	mu    sync.Mutex
	slots map[string]*slot
	locks map[string]*sync.Mutex
}

// New creates a registry backed by the given client factory.
func New(factory wa.NewClientFunc, b *bus.Bus, logger *zap.Logger) *Registry {
	return &Registry{
		factory: factory,
		bus:     b,
		logger:  logger,
		tick:    time.Second,
		slots:   make(map[string]*slot),
		locks:   make(map[string]*sync.Mutex),
	}
}

// nameLock returns the mutex serializing lifecycle ops for one name.
func (r *Registry) nameLock(name string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[name]
	if !ok {
		l = &sync.Mutex{}
		r.locks[name] = l
	}
	return l
}

func (r *Registry) slot(name string) *slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[name]
}

func (r *Registry) putSlot(s *slot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[s.name] = s
}

func (r *Registry) dropSlot(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, name)
}

// Connect creates the backend handle for the named session. When the
// session is already live (connecting, awaiting a credential, or ready)
// it reports alreadyConnected without touching the existing handle. The
// check and the creation happen under the per-name lock, so two
// concurrent connects can never produce two handles.
func (r *Registry) Connect(ctx context.Context, name string) (alreadyConnected bool, err error) {
	lock := r.nameLock(name)
	lock.Lock()
	defer lock.Unlock()

	if s := r.slot(name); s != nil && s.machine.Live() {
		return true, nil
	}

	client, err := r.factory(ctx, name)
	if err != nil {
		return false, fmt.Errorf("create backend client: %w", err)
	}

	sctx, cancel := context.WithCancel(context.Background())
	s := &slot{
		name:      name,
		createdAt: time.Now(),
		machine:   status.NewMachine(name, r.bus),
		client:    client,
		cred:      make(chan wa.CredentialEvent, 1),
		ctx:       sctx,
		cancel:    cancel,
	}
	if err := s.machine.Transition(status.Connecting); err != nil {
		cancel()
		_ = client.Close()
		return false, err
	}
	r.putSlot(s)

	if !client.HasCredentials() {
		// The credential stream must be attached before Connect.
		events, err := client.CredentialEvents(sctx)
		if err != nil {
			r.teardown(s)
			return false, fmt.Errorf("credential stream: %w", err)
		}
		go r.pumpCredentials(s, events)
	}

	if err := client.Connect(); err != nil {
		r.teardown(s)
		return false, fmt.Errorf("connect backend: %w", err)
	}

	go r.watchReady(s)
	return false, nil
}

// pumpCredentials forwards the first credential payload into the slot's
// one-shot channel and renders it as qr.png in the session directory.
func (r *Registry) pumpCredentials(s *slot, events <-chan wa.CredentialEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if evt.Err != nil {
				r.logger.Warn("credential stream error",
					zap.String("session", s.name), zap.Error(evt.Err))
				continue
			}
			if s.machine.Current() == status.Connecting {
				if err := s.machine.Transition(status.AwaitingCredential); err != nil {
					r.logger.Warn("awaiting-credential transition rejected",
						zap.String("session", s.name), zap.Error(err))
				}
			}
			select {
			case s.cred <- evt:
			default:
				// A payload is already parked; later refreshes are dropped.
			}
			if err := qrcode.WriteFile(evt.Code, qrcode.Medium, 256, session.QRPath(s.name)); err != nil {
				r.logger.Warn("write qr.png", zap.String("session", s.name), zap.Error(err))
			}
		}
	}
}

// watchReady waits for backend readiness, loads the chat snapshot, and
// moves the session to ready.
func (r *Registry) watchReady(s *slot) {
	select {
	case <-s.ctx.Done():
		return
	case <-s.client.Ready():
	}

	chats, err := s.client.LoadChats(s.ctx)
	for attempt := 1; err != nil && attempt < snapshotLoadAttempts; attempt++ {
		r.logger.Warn("load chats after connect",
			zap.String("session", s.name), zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(r.tick):
		}
		chats, err = s.client.LoadChats(s.ctx)
	}
	if err != nil {
		r.logger.Error("chat snapshot unavailable, session comes up degraded; close and reconnect to rebuild it",
			zap.String("session", s.name), zap.Error(err))
	}
	s.snapshot.Store(wa.NewSnapshot(chats))

	if err := s.machine.Transition(status.Ready); err != nil {
		r.logger.Warn("ready transition rejected",
			zap.String("session", s.name), zap.Error(err))
		return
	}
	r.logger.Info("session ready",
		zap.String("session", s.name), zap.Int("chats", len(chats)))
}

// AwaitCredential waits for the session's first credential payload,
// bounded by a tick budget. Timing out is informational: the connect
// keeps running and the session may still reach ready afterwards.
func (r *Registry) AwaitCredential(ctx context.Context, name string, ticks int) (string, error) {
	s := r.slot(name)
	if s == nil || !s.machine.Live() {
		return "", wa.ErrSessionAbsent
	}
	if s.machine.Current() == status.Ready {
		return "", wa.ErrAlreadyConnected
	}
	if ticks <= 0 {
		ticks = DefaultCredentialTicks
	}

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	elapsed := 0
	for {
		select {
		case evt := <-s.cred:
			return evt.Code, nil
		case <-s.client.Ready():
			return "", wa.ErrAlreadyConnected
		case <-s.ctx.Done():
			return "", wa.ErrSessionAbsent
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			elapsed++
			if elapsed >= ticks {
				return "", wa.ErrCredentialTimeout
			}
		}
	}
}

// Destroy tears down the named session. It soft-fails (found=false) when
// neither a live handle nor persisted credentials exist. With
// purgeCredentials the session's durable directory is removed too.
func (r *Registry) Destroy(ctx context.Context, name string, purgeCredentials bool) (found bool, err error) {
	lock := r.nameLock(name)
	lock.Lock()
	defer lock.Unlock()

	s := r.slot(name)
	if s == nil && !session.CredentialsExist(name) {
		return false, nil
	}

	if s != nil {
		r.teardown(s)
	}
	if purgeCredentials {
		if err := session.PurgeCredentials(name); err != nil {
			return true, fmt.Errorf("purge credentials: %w", err)
		}
	}
	return true, nil
}

// Logout is Destroy plus a backend-side credential invalidation, so the
// phone forgets the pairing too.
func (r *Registry) Logout(ctx context.Context, name string) (found bool, err error) {
	lock := r.nameLock(name)
	lock.Lock()
	defer lock.Unlock()

	s := r.slot(name)
	if s == nil && !session.CredentialsExist(name) {
		return false, nil
	}

	if s != nil {
		if lerr := s.client.Logout(ctx); lerr != nil {
			r.logger.Warn("backend logout",
				zap.String("session", name), zap.Error(lerr))
		}
		r.teardown(s)
	}
	return true, nil
}

// teardown cancels waiters, releases the handle, and frees the slot.
// Callers hold the per-name lock.
func (r *Registry) teardown(s *slot) {
	s.cancel()
	s.client.Disconnect()
	if err := s.client.Close(); err != nil {
		r.logger.Warn("close backend client",
			zap.String("session", s.name), zap.Error(err))
	}
	if s.machine.Current() == status.Ready {
		_ = s.machine.Transition(status.Destroyed)
	}
	s.machine.ForceAbsent()
	r.dropSlot(s.name)
}

// Chats returns the current chat snapshot. Only valid once the session
// is ready.
func (r *Registry) Chats(name string) ([]wa.Chat, error) {
	_, snap, err := r.Ready(name)
	if err != nil {
		return nil, err
	}
	return snap.Chats(), nil
}

// Ready returns the backend handle and the current snapshot for a ready
// session, or ErrNotReady.
func (r *Registry) Ready(name string) (wa.ChatClient, *wa.Snapshot, error) {
	s := r.slot(name)
	if s == nil || s.machine.Current() != status.Ready {
		return nil, nil, wa.ErrNotReady
	}
	return s.client, s.snapshot.Load(), nil
}

// RefreshSnapshot re-fetches the chat list and swaps the snapshot.
func (r *Registry) RefreshSnapshot(ctx context.Context, name string) error {
	s := r.slot(name)
	if s == nil || s.machine.Current() != status.Ready {
		return wa.ErrNotReady
	}
	chats, err := s.client.LoadChats(ctx)
	if err != nil {
		return fmt.Errorf("load chats: %w", err)
	}
	s.snapshot.Store(wa.NewSnapshot(chats))
	return nil
}

// Status reports the lifecycle state of the named session.
func (r *Registry) Status(name string) status.State {
	s := r.slot(name)
	if s == nil {
		return status.Absent
	}
	return s.machine.Current()
}

// Shutdown tears down every live session, keeping credentials.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	names := make([]string, 0, len(r.slots))
	for name := range r.slots {
		names = append(names, name)
	}
	r.mu.Unlock()

	for _, name := range names {
		if _, err := r.Destroy(ctx, name, false); err != nil {
			r.logger.Warn("shutdown destroy",
				zap.String("session", name), zap.Error(err))
		}
	}
}
