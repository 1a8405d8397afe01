//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGoCVValidator_Stub(t *testing.T) {
	_, err := NewGoCVValidator().Validate(context.Background(), []byte("x"))
	require.ErrorIs(t, err, ErrGoCVDisabled)
}
