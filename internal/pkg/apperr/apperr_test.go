package apperr

import (
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOfSurvivesWrapping(t *testing.T) {
	base := Newf(KindBusinessRejection, CodeInsufficientCapacity, "only %d seats available", 3)
	wrapped := pkgerrors.Wrap(base, "call flight-service")

	assert.Equal(t, KindBusinessRejection, KindOf(wrapped))
	assert.Equal(t, CodeInsufficientCapacity, CodeOf(wrapped))
	assert.True(t, IsKind(wrapped, KindBusinessRejection))
}

func TestKindOfPlainError(t *testing.T) {
	err := pkgerrors.New("boom")
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Equal(t, CodeInconsistency, CodeOf(err))
	assert.Equal(t, "internal error", MessageOf(err))
}

func TestKindFromCode(t *testing.T) {
	cases := map[string]Kind{
		CodeValidation:           KindValidation,
		CodeRequesterInvalid:     KindValidation,
		CodeNotFound:             KindNotFound,
		CodeInsufficientCapacity: KindBusinessRejection,
		CodeResourceNotBookable:  KindBusinessRejection,
		CodeStateConflict:        KindStateConflict,
		CodeUpstreamUnavailable:  KindUpstreamUnavailable,
		CodeCapacityOverflow:     KindInconsistency,
		CodeInconsistency:        KindInconsistency,
	}
	for code, want := range cases {
		assert.Equal(t, want, KindFromCode(code), code)
	}

	// 未知码不能被当成业务拒绝
	assert.Equal(t, KindUnknown, KindFromCode("SOMETHING_NEW"))
}

func TestErrorStringAndUnwrap(t *testing.T) {
	cause := pkgerrors.New("connection refused")
	err := Wrap(cause, KindUpstreamUnavailable, CodeUpstreamUnavailable, "service flight-service unreachable")

	assert.Contains(t, err.Error(), CodeUpstreamUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, cause, err.Unwrap())
}
