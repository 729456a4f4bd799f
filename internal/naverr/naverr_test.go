package naverr_test

import (
	"errors"
	"testing"

	"github.com/codenav/navcore/internal/naverr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKindAndMessage(t *testing.T) {
	err := naverr.New(naverr.KindParse, "unexpected token")
	assert.Equal(t, naverr.KindParse, err.Kind())
	assert.Contains(t, err.Error(), "unexpected token")
	assert.Contains(t, err.Error(), "parse")
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := naverr.Wrap(naverr.KindIOFailure, "writing index.bin", cause)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, naverr.KindIOFailure, naverr.KindOf(err))
}

func TestIsMatchesByKindNotMessage(t *testing.T) {
	a := naverr.New(naverr.KindResolutionFailure, "symbol not found")
	b := naverr.New(naverr.KindResolutionFailure, "different message")
	c := naverr.New(naverr.KindCorruption, "symbol not found")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestKindOfNonNavErrReturnsEmpty(t *testing.T) {
	assert.Equal(t, naverr.Kind(""), naverr.KindOf(errors.New("plain")))
}
