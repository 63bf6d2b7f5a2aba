package jerrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.appointy.com/autoschema/jerrors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestConvertError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{"plain", errors.New("boom"), "Unknown", "boom"},
		{"status", status.Error(codes.PermissionDenied, "nope"), "PermissionDenied", "nope"},
		{"data", jerrors.NewDataError(codes.NotFound, "class %s missing", "Post"), "NotFound", "class Post missing"},
		{"wrapped data", fmt.Errorf("load: %w", jerrors.NewDataError(codes.Unavailable, "db down")), "Unavailable", "db down"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e := jerrors.ConvertError(c.err)
			require.Equal(t, c.code, e.Extensions.Code)
			require.Equal(t, c.message, e.Message)
			require.NotNil(t, e.Paths)
		})
	}
}

func TestConvertErrorPassthrough(t *testing.T) {
	in := &jerrors.Error{Message: "already converted", Extensions: jerrors.Extensions{Code: "Internal"}}
	require.Same(t, in, jerrors.ConvertError(fmt.Errorf("wrap: %w", in)))
}

func TestIsDataError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("snapshot: %w", jerrors.WrapDataError(codes.Unavailable, cause, "loading classes"))
	require.True(t, jerrors.IsDataError(err))
	require.True(t, errors.Is(err, cause))
	require.False(t, jerrors.IsDataError(errors.New("internal")))
}
