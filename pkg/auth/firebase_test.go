package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
)

// fakeIdentityToolkit serves just enough of the Identity Toolkit API
// for the session client.
func fakeIdentityToolkit(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/accounts:signInWithPassword", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "hunter2" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "INVALID_LOGIN_CREDENTIALS"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"idToken": "tok-1",
			"localId": "u1",
			"email":   body.Email,
		})
	})
	mux.HandleFunc("/v1/accounts:signUp", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email == "taken@example.com" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "EMAIL_EXISTS"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"idToken": "tok-2",
			"localId": "u2",
			"email":   body.Email,
		})
	})
	mux.HandleFunc("/v1/accounts:lookup", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"users": []map[string]any{{
				"localId":     "u1",
				"email":       "a@example.com",
				"createdAt":   "1700000000000",
				"lastLoginAt": "1700000100000",
			}},
		})
	})
	mux.HandleFunc("/v1/accounts:sendOobCode", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RequestType string `json:"requestType"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.RequestType != "PASSWORD_RESET" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "INVALID_REQ_TYPE"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"email": "a@example.com"})
	})
	return httptest.NewServer(mux)
}

func TestFirebase_SignIn(t *testing.T) {
	srv := fakeIdentityToolkit(t)
	defer srv.Close()
	ctx := context.Background()

	t.Run("success establishes the principal with metadata", func(t *testing.T) {
		is := is.New(t)
		f := NewFirebase("key", nil, WithEndpoint(srv.URL))

		var seen []*Principal
		cancel := f.Subscribe(func(p *Principal) { seen = append(seen, p) })
		defer cancel()
		is.Equal(len(seen), 1) // current value delivered immediately
		is.Equal(seen[0], nil)

		is.NoErr(f.SignIn(ctx, "a@example.com", "hunter2"))
		p := f.Current()
		is.True(p != nil)
		is.Equal(p.UID, "u1")
		is.Equal(p.Email, "a@example.com")
		is.Equal(p.CreatedAt, time.UnixMilli(1700000000000))
		is.Equal(p.LastLoginAt, time.UnixMilli(1700000100000))
		is.Equal(len(seen), 2)
		is.Equal(seen[1], p)
	})

	t.Run("bad password maps to ErrInvalidCredentials", func(t *testing.T) {
		is := is.New(t)
		f := NewFirebase("key", nil, WithEndpoint(srv.URL))
		err := f.SignIn(ctx, "a@example.com", "wrong")
		is.True(errors.Is(err, ErrInvalidCredentials))
		is.Equal(f.Current(), nil)
	})

	t.Run("unreachable host maps to ErrNetwork", func(t *testing.T) {
		is := is.New(t)
		f := NewFirebase("key", nil, WithEndpoint("http://127.0.0.1:1"))
		err := f.SignIn(ctx, "a@example.com", "hunter2")
		is.True(errors.Is(err, ErrNetwork))
	})
}

func TestFirebase_SignUp(t *testing.T) {
	srv := fakeIdentityToolkit(t)
	defer srv.Close()
	ctx := context.Background()

	t.Run("existing email maps to ErrEmailInUse", func(t *testing.T) {
		is := is.New(t)
		f := NewFirebase("key", nil, WithEndpoint(srv.URL))
		err := f.SignUp(ctx, "taken@example.com", "hunter2")
		is.True(errors.Is(err, ErrEmailInUse))
	})

	t.Run("new account signs in", func(t *testing.T) {
		is := is.New(t)
		f := NewFirebase("key", nil, WithEndpoint(srv.URL))
		is.NoErr(f.SignUp(ctx, "new@example.com", "hunter2"))
		is.True(f.Current() != nil)
	})
}

func TestFirebase_SendPasswordReset(t *testing.T) {
	is := is.New(t)
	srv := fakeIdentityToolkit(t)
	defer srv.Close()
	f := NewFirebase("key", nil, WithEndpoint(srv.URL))
	is.NoErr(f.SendPasswordReset(context.Background(), "a@example.com"))
}

func TestFirebase_SignOut(t *testing.T) {
	is := is.New(t)
	srv := fakeIdentityToolkit(t)
	defer srv.Close()
	ctx := context.Background()

	f := NewFirebase("key", nil, WithEndpoint(srv.URL))
	is.NoErr(f.SignIn(ctx, "a@example.com", "hunter2"))

	var last *Principal = f.Current()
	cancel := f.Subscribe(func(p *Principal) { last = p })
	defer cancel()

	is.NoErr(f.SignOut(ctx))
	is.Equal(f.Current(), nil)
	is.Equal(last, nil)
}

func TestMapAPIError(t *testing.T) {
	tests := []struct {
		message string
		want    error
	}{
		{"EMAIL_NOT_FOUND", ErrInvalidCredentials},
		{"INVALID_PASSWORD", ErrInvalidCredentials},
		{"INVALID_LOGIN_CREDENTIALS", ErrInvalidCredentials},
		{"EMAIL_EXISTS", ErrEmailInUse},
		{"WEAK_PASSWORD : Password should be at least 6 characters", ErrWeakPassword},
		{"USER_DISABLED", ErrUserDisabled},
		{"TOO_MANY_ATTEMPTS_TRY_LATER", ErrTooManyRequests},
		{"SOMETHING_ELSE", ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			is := is.New(t)
			err := mapAPIError(tt.message)
			is.True(errors.Is(err, tt.want))
			is.True(strings.Contains(err.Error(), strings.SplitN(tt.message, " ", 2)[0]))
		})
	}
}
