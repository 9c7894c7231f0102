package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/almirah-shop/storefront/internal/client"
	"github.com/almirah-shop/storefront/internal/config"
	"github.com/almirah-shop/storefront/internal/credentials"
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/almirah-shop/storefront/internal/utils"
	"go.uber.org/zap"
)

// Manager owns the current Session and its lifecycle: Init, Authenticate,
// RefreshRole and Clear. It is the client.TokenSource for authenticated calls.
type Manager struct {
	mu       sync.RWMutex
	current  Session
	api      *client.Client
	store    credentials.Store
	resolver RoleResolver
	policy   config.LoginPolicy
	now      func() time.Time
}

func NewManager(api *client.Client, store credentials.Store, resolver RoleResolver, policy config.LoginPolicy) *Manager {
	if policy == "" {
		policy = config.LoginPolicyStrict
	}
	return &Manager{
		current:  Anonymous(),
		api:      api,
		store:    store,
		resolver: resolver,
		policy:   policy,
		now:      time.Now,
	}
}

// NewResolver picks the role resolver for the configured role source.
func NewResolver(api *client.Client, source config.RoleSource) RoleResolver {
	if source == config.RoleSourceIdentity {
		return NewIdentityResolver(api)
	}
	return NewProbeResolver(api)
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Credential
}

func (m *Manager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) Policy() config.LoginPolicy {
	return m.policy
}

// Init restores a stored credential, adopts its stored role right away and
// then re-resolves the role against the backend.
func (m *Manager) Init(ctx context.Context) (Session, error) {
	creds, err := m.store.Load()
	if err != nil {
		utils.Zlog.Warn("Stored credentials unreadable, starting anonymous", zap.Error(err))
		return Anonymous(), m.Clear()
	}
	if creds.Empty() {
		m.set(Anonymous())
		return Anonymous(), nil
	}

	role := creds.Role
	if !role.Authenticated() {
		role = types.RoleCustomer
	}
	m.set(Session{
		Principal:  creds.Username,
		Role:       role,
		Credential: creds.Token,
		Portal:     creds.Portal,
	})
	return m.RefreshRole(ctx)
}

// Authenticate logs in through the customer storefront.
func (m *Manager) Authenticate(ctx context.Context, identifier, password string) (Session, error) {
	return m.login(ctx, identifier, password, types.RoleCustomer)
}

// AuthenticatePortal logs in through a seller or admin portal; the credential
// must resolve to exactly that role.
func (m *Manager) AuthenticatePortal(ctx context.Context, identifier, password string, portal types.Role) (Session, error) {
	if !portal.Privileged() {
		return Anonymous(), fmt.Errorf("no portal for role %s", portal)
	}
	return m.login(ctx, identifier, password, portal)
}

func (m *Manager) AuthenticateSeller(ctx context.Context, identifier, password string) (Session, error) {
	return m.AuthenticatePortal(ctx, identifier, password, types.RoleSeller)
}

func (m *Manager) AuthenticateAdmin(ctx context.Context, identifier, password string) (Session, error) {
	return m.AuthenticatePortal(ctx, identifier, password, types.RoleAdmin)
}

func (m *Manager) login(ctx context.Context, identifier, password string, entry types.Role) (Session, error) {
	resp, err := m.api.Login(ctx, identifier, password)
	if err != nil {
		return Anonymous(), err
	}
	if resp.AccessToken == "" {
		return Anonymous(), errors.New("login response carried no access token")
	}

	principal := resp.Username
	if principal == "" {
		principal = identifier
	}

	role, err := m.loginRole(ctx, resp)
	if errors.Is(err, ErrRoleUndetermined) && entry == types.RoleCustomer {
		// An unverifiable role fails open at the storefront entry only.
		role, err = types.RoleCustomer, nil
	}
	if err != nil {
		return Anonymous(), errors.Join(err, m.Clear())
	}
	if err := m.admit(role, entry); err != nil {
		utils.Zlog.Info("Login rejected at entry point",
			zap.String("username", principal),
			zap.String("role", role.String()),
			zap.String("entry", entry.String()))
		return Anonymous(), errors.Join(err, m.Clear())
	}

	sess := Session{Principal: principal, Role: role, Credential: resp.AccessToken}
	if entry != types.RoleCustomer {
		sess.Portal = entry
	}
	if err := m.persist(sess); err != nil {
		return Anonymous(), errors.Join(err, m.Clear())
	}
	m.set(sess)
	utils.Zlog.Info("Logged in",
		zap.String("username", principal),
		zap.String("role", role.String()))
	return sess, nil
}

// loginRole trusts a role carried by the login response and otherwise asks
// the resolver.
func (m *Manager) loginRole(ctx context.Context, resp *types.LoginResponse) (types.Role, error) {
	if tokenExpired(resp.AccessToken, m.now()) {
		return types.RoleAnonymous, fmt.Errorf("%w: token already expired", ErrCredentialRejected)
	}
	if resp.Role != "" {
		if role, err := types.ParseRole(resp.Role); err == nil && role.Authenticated() {
			return role, nil
		}
	}
	return m.resolver.ResolveRole(ctx, resp.AccessToken)
}

// admit applies the login policy for an entry point.
func (m *Manager) admit(role types.Role, entry types.Role) error {
	if entry != types.RoleCustomer {
		if role != entry {
			return &PortalError{Role: role, Entry: entry}
		}
		return nil
	}
	if m.policy == config.LoginPolicyStrict && role.Privileged() {
		return &PortalError{Role: role, Entry: entry}
	}
	return nil
}

// RefreshRole re-resolves the current credential. A rejected credential or a
// role that does not belong at the session's entry point clears the session.
// An undetermined role keeps the session at customer level without touching
// the credential store.
func (m *Manager) RefreshRole(ctx context.Context) (Session, error) {
	cur := m.Snapshot()
	if cur.Credential == "" {
		return Anonymous(), nil
	}
	if tokenExpired(cur.Credential, m.now()) {
		return Anonymous(), errors.Join(fmt.Errorf("%w: token expired", ErrCredentialRejected), m.Clear())
	}

	role, err := m.resolver.ResolveRole(ctx, cur.Credential)
	if errors.Is(err, ErrCredentialRejected) {
		utils.Zlog.Info("Stored credential rejected, clearing session",
			zap.String("username", cur.Principal))
		return Anonymous(), errors.Join(err, m.Clear())
	}
	if errors.Is(err, ErrRoleUndetermined) {
		// Customer level in memory only; the stored role stays for the next refresh.
		utils.Zlog.Warn("Role unresolved, continuing as customer",
			zap.String("username", cur.Principal),
			zap.String("storedRole", cur.Role.String()),
			zap.Error(err))
		degraded := cur
		degraded.Role = types.RoleCustomer
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.current.Credential != cur.Credential {
			return m.current, nil
		}
		m.current = degraded
		return degraded, nil
	}
	if err != nil {
		return cur, err
	}
	if err := m.admit(role, cur.entry()); err != nil {
		return Anonymous(), errors.Join(err, m.Clear())
	}

	next := cur
	next.Role = role

	m.mu.Lock()
	if m.current.Credential != cur.Credential {
		// A login or logout happened meanwhile; it wins.
		latest := m.current
		m.mu.Unlock()
		return latest, nil
	}
	m.current = next
	m.mu.Unlock()

	if next.Role != cur.Role {
		if err := m.persist(next); err != nil {
			return next, err
		}
	}
	return next, nil
}

// Clear empties the in-memory session and the credential store.
func (m *Manager) Clear() error {
	m.set(Anonymous())
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// RequireRole returns the current session when it carries one of roles.
func (m *Manager) RequireRole(roles ...types.Role) (Session, error) {
	cur := m.Snapshot()
	if !cur.Authenticated() {
		return cur, ErrNotAuthenticated
	}
	for _, r := range roles {
		if cur.Role == r {
			return cur, nil
		}
	}
	return cur, &RoleError{Have: cur.Role, Want: roles}
}

func (m *Manager) set(s Session) {
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
}

func (m *Manager) persist(s Session) error {
	return m.store.Save(credentials.Credentials{
		Token:    s.Credential,
		Username: s.Principal,
		Role:     s.Role,
		Portal:   s.Portal,
	})
}

// RoleError is returned when an operation needs a role the session lacks.
type RoleError struct {
	Have types.Role
	Want []types.Role
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("requires role %v, session has %s", e.Want, e.Have)
}
