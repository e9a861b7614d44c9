package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"storefront/models"
)

type mockSessionAPI struct {
	mu          sync.Mutex
	member      *models.Member
	memberErr   error
	probeCalls  int
	probeGate   chan struct{}
	signOutErr  error
	signOutHits int
	token       string
}

func (m *mockSessionAPI) CurrentMember(ctx context.Context) (*models.Member, error) {
	if m.probeGate != nil {
		<-m.probeGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probeCalls++
	if m.memberErr != nil {
		return nil, m.memberErr
	}
	return m.member, nil
}

func (m *mockSessionAPI) SignOut(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signOutHits++
	return m.signOutErr
}

func (m *mockSessionAPI) SessionToken() string {
	return m.token
}

func TestResolve_SetsMemberOnce(t *testing.T) {
	api := &mockSessionAPI{member: &models.Member{ID: 7, Authority: models.AuthorityGeneral}}
	store := NewStore(api, zap.NewNop())

	assert.False(t, store.Resolved())

	store.Resolve(context.Background())
	assert.True(t, store.Resolved())
	assert.Equal(t, int64(7), store.Member().ID)

	// Further calls never re-probe.
	store.Resolve(context.Background())
	store.Resolve(context.Background())
	assert.Equal(t, 1, api.probeCalls)
}

func TestResolve_FailureResolvesWithoutMember(t *testing.T) {
	api := &mockSessionAPI{memberErr: errors.New("401 not authenticated")}
	store := NewStore(api, zap.NewNop())

	store.Resolve(context.Background())
	assert.True(t, store.Resolved())
	assert.Nil(t, store.Member())

	// Resolution never reverts, even after further calls.
	store.Resolve(context.Background())
	assert.True(t, store.Resolved())
	assert.Equal(t, 1, api.probeCalls)
}

func TestResolve_ConcurrentCallersProbeOnce(t *testing.T) {
	api := &mockSessionAPI{member: &models.Member{ID: 1}}
	store := NewStore(api, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Resolve(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, api.probeCalls)
	assert.True(t, store.Resolved())
}

func TestResolve_LateProbeDoesNotOverwriteSignIn(t *testing.T) {
	gate := make(chan struct{})
	api := &mockSessionAPI{memberErr: errors.New("401 not authenticated"), probeGate: gate}
	store := NewStore(api, zap.NewNop())

	done := make(chan struct{})
	go func() {
		store.Resolve(context.Background())
		close(done)
	}()

	// Sign-in completes while the startup probe is still in flight.
	store.SetMember(&models.Member{ID: 5})
	assert.Equal(t, int64(5), store.Member().ID)

	close(gate)
	<-done

	// The probe's stale "no member" answer must not sign the shopper out.
	assert.True(t, store.Resolved())
	assert.Equal(t, int64(5), store.Member().ID)
}

func TestSetMemberAndClear(t *testing.T) {
	store := NewStore(&mockSessionAPI{}, zap.NewNop())

	store.SetMember(&models.Member{ID: 3, Email: "a@b.c"})
	assert.True(t, store.Resolved())
	assert.Equal(t, int64(3), store.Member().ID)

	store.Clear()
	assert.Nil(t, store.Member())
	assert.True(t, store.Resolved())
}

func TestSignOut_ClearsEvenWhenRemoteFails(t *testing.T) {
	api := &mockSessionAPI{signOutErr: errors.New("network down")}
	store := NewStore(api, zap.NewNop())
	store.SetMember(&models.Member{ID: 3})

	store.SignOut(context.Background())
	assert.Nil(t, store.Member())
	assert.Equal(t, 1, api.signOutHits)
}
