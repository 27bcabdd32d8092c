package rule

import (
	"context"
	"testing"

	"voyago/internal/pkg/apperr"
	"voyago/internal/service/booking/domain/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCELPolicyValidate(t *testing.T) {
	policy, err := NewCELPolicy([]string{
		"passengers <= 9",
		"rooms <= 5",
		"!has_hotel || nights <= 30",
	})
	require.NoError(t, err)

	ok := port.PolicyInput{Passengers: 2, Rooms: 1, Nights: 3, HasFlight: true, HasHotel: true}
	assert.NoError(t, policy.Validate(context.Background(), ok))

	tooMany := ok
	tooMany.Passengers = 10
	err = policy.Validate(context.Background(), tooMany)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "passengers <= 9")

	longStay := ok
	longStay.Nights = 31
	assert.Error(t, policy.Validate(context.Background(), longStay))

	// 无酒店段时住宿规则短路放行
	flightOnly := port.PolicyInput{Passengers: 2, Nights: 0, HasFlight: true}
	assert.NoError(t, policy.Validate(context.Background(), flightOnly))
}

func TestCELPolicyEmptyRules(t *testing.T) {
	policy, err := NewCELPolicy(nil)
	require.NoError(t, err)
	assert.NoError(t, policy.Validate(context.Background(), port.PolicyInput{Passengers: 100}))
}

func TestCELPolicyCompileErrors(t *testing.T) {
	_, err := NewCELPolicy([]string{"passengers <= "})
	assert.Error(t, err)

	// 规则必须返回 bool
	_, err = NewCELPolicy([]string{"passengers + 1"})
	assert.Error(t, err)

	// 未声明的变量在编译期暴露
	_, err = NewCELPolicy([]string{"budget < 100"})
	assert.Error(t, err)
}
