package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsAreDistinguishable(t *testing.T) {
	err := NotFound("could not find conversation with id %s", "c1")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "could not find conversation with id c1", err.Error())
}

func TestWrappedErrorsKeepTheirKind(t *testing.T) {
	err := fmt.Errorf("handling request: %w", Forbidden("no access to the conversation"))
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestInvalidStateCarriesDetail(t *testing.T) {
	err := InvalidState("cannot add users to a conversation that is not a group")
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.Contains(t, err.Error(), "not a group")
}
