package store

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"unauthenticated", status.Error(codes.Unauthenticated, "token expired"), ErrUnauthenticated},
		{"permission denied", status.Error(codes.PermissionDenied, "rules"), ErrPermissionDenied},
		{"not found", status.Error(codes.NotFound, "no doc"), ErrNotFound},
		{"unavailable", status.Error(codes.Unavailable, "offline"), ErrNetwork},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), ErrNetwork},
		{"context deadline", context.DeadlineExceeded, ErrNetwork},
		{"anything else", status.Error(codes.Internal, "boom"), ErrInternal},
		{"plain error", errors.New("boom"), ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			got := mapError(tt.in)
			if tt.want == nil {
				is.NoErr(got)
				return
			}
			is.True(errors.Is(got, tt.want))
		})
	}
}
