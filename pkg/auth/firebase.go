package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultEndpoint = "https://identitytoolkit.googleapis.com"

// Firebase implements Session against the Firebase Identity Toolkit
// REST API. Email/password sign-in is a client-side API with no
// official Go SDK, so the calls are issued directly.
type Firebase struct {
	apiKey   string
	endpoint string
	http     *http.Client
	log      *slog.Logger

	mu      sync.Mutex
	current *Principal
	idToken string
	subs    map[int]func(*Principal)
	nextSub int
}

var _ Session = (*Firebase)(nil)

// FirebaseOption configures a Firebase session.
type FirebaseOption func(*Firebase)

// WithEndpoint points the client at a different Identity Toolkit host,
// such as the local emulator.
func WithEndpoint(endpoint string) FirebaseOption {
	return func(f *Firebase) { f.endpoint = strings.TrimSuffix(endpoint, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) FirebaseOption {
	return func(f *Firebase) { f.http = c }
}

func NewFirebase(apiKey string, log *slog.Logger, opts ...FirebaseOption) *Firebase {
	if log == nil {
		log = slog.Default()
	}
	f := &Firebase{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      log,
		subs:     map[int]func(*Principal){},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Firebase) Current() *Principal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *Firebase) Subscribe(fn func(*Principal)) CancelFunc {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	current := f.current
	f.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

type authResponse struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) error {
	var out authResponse
	err := f.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return err
	}
	return f.establish(ctx, out)
}

func (f *Firebase) SignUp(ctx context.Context, email, password string) error {
	var out authResponse
	err := f.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &out)
	if err != nil {
		return err
	}
	return f.establish(ctx, out)
}

func (f *Firebase) SendPasswordReset(ctx context.Context, email string) error {
	return f.post(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

// SignOut clears the local session unconditionally; the ID token is
// stateless, so there is no server call to fail.
func (f *Firebase) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.current = nil
	f.idToken = ""
	f.mu.Unlock()
	f.notify(nil)
	return nil
}

// establish records the signed-in user and fetches account metadata for
// the profile screen before notifying subscribers.
func (f *Firebase) establish(ctx context.Context, res authResponse) error {
	p := &Principal{UID: res.LocalID, Email: res.Email}

	var lookup struct {
		Users []struct {
			LocalID     string `json:"localId"`
			Email       string `json:"email"`
			CreatedAt   string `json:"createdAt"`
			LastLoginAt string `json:"lastLoginAt"`
		} `json:"users"`
	}
	f.mu.Lock()
	f.idToken = res.IDToken
	f.mu.Unlock()
	if err := f.post(ctx, "accounts:lookup", map[string]any{"idToken": res.IDToken}, &lookup); err != nil {
		// metadata is cosmetic; sign-in already succeeded
		f.log.Warn("account lookup failed", "err", err)
	} else if len(lookup.Users) > 0 {
		u := lookup.Users[0]
		p.CreatedAt = millisTime(u.CreatedAt)
		p.LastLoginAt = millisTime(u.LastLoginAt)
	}

	f.mu.Lock()
	f.current = p
	f.mu.Unlock()
	f.notify(p)
	return nil
}

func (f *Firebase) notify(p *Principal) {
	f.mu.Lock()
	fns := make([]func(*Principal), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(p)
	}
}

func (f *Firebase) post(ctx context.Context, method string, body map[string]any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	url := fmt.Sprintf("%s/v1/%s?key=%s", f.endpoint, method, f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(res.Body).Decode(&apiErr); err != nil {
			return fmt.Errorf("%w: http %d", ErrInternal, res.StatusCode)
		}
		return mapAPIError(apiErr.Error.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return nil
}

// mapAPIError translates Identity Toolkit error codes onto the package
// sentinels. Messages sometimes carry a suffix ("WEAK_PASSWORD : ...").
func mapAPIError(message string) error {
	code := message
	if i := strings.IndexAny(code, " :"); i >= 0 {
		code = code[:i]
	}
	sentinel := ErrInternal
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL", "MISSING_PASSWORD", "MISSING_EMAIL":
		sentinel = ErrInvalidCredentials
	case "EMAIL_EXISTS":
		sentinel = ErrEmailInUse
	case "WEAK_PASSWORD":
		sentinel = ErrWeakPassword
	case "USER_DISABLED":
		sentinel = ErrUserDisabled
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		sentinel = ErrTooManyRequests
	}
	return fmt.Errorf("%w: %s", sentinel, message)
}

// millisTime parses the millisecond-epoch strings the lookup endpoint
// returns for account timestamps.
func millisTime(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
