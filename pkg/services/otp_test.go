package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"petshop_backend/pkg/models"
	"petshop_backend/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func otpStores(t *testing.T) map[string]OTPStore {
	_, client := testutil.NewTestRedis(t)
	return map[string]OTPStore{
		"memory": NewMemoryOTPStore(),
		"redis":  NewRedisOTPStore(client),
	}
}

func TestOTPIssueAndVerify(t *testing.T) {
	for name, store := range otpStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewOTPService(store)

			code, err := svc.Issue(ctx, models.OTPChannelEmail, "Pet@Example.com")
			require.NoError(t, err)
			assert.Len(t, code, OTPLength)

			_, err = svc.Issue(ctx, models.OTPChannelEmail, "pet@example.com")
			assert.ErrorIs(t, err, ErrOTPCooldown)

			require.NoError(t, svc.Verify(ctx, models.OTPChannelEmail, "pet@example.com", code))
			assert.ErrorIs(t, svc.Verify(ctx, models.OTPChannelEmail, "pet@example.com", code), ErrOTPNotFound)
		})
	}
}

func TestOTPAttemptsAreLimited(t *testing.T) {
	for name, store := range otpStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewOTPService(store)

			code, err := svc.Issue(ctx, models.OTPChannelSMS, "+919876543210")
			require.NoError(t, err)
			wrong := "000000"
			if code == wrong {
				wrong = "111111"
			}

			var mismatch *OTPMismatchError
			err = svc.Verify(ctx, models.OTPChannelSMS, "+919876543210", wrong)
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, 2, mismatch.Remaining)

			svc.Verify(ctx, models.OTPChannelSMS, "+919876543210", wrong)
			svc.Verify(ctx, models.OTPChannelSMS, "+919876543210", wrong)

			err = svc.Verify(ctx, models.OTPChannelSMS, "+919876543210", code)
			assert.ErrorIs(t, err, ErrOTPTooManyAttempts)
			assert.ErrorIs(t, svc.Verify(ctx, models.OTPChannelSMS, "+919876543210", code), ErrOTPNotFound)
		})
	}
}

func TestOTPExpiry(t *testing.T) {
	ctx := context.Background()
	svc := NewOTPService(NewMemoryOTPStore())
	now := time.Now()
	svc.now = func() time.Time { return now }

	code, err := svc.Issue(ctx, models.OTPChannelEmail, "late@example.com")
	require.NoError(t, err)

	now = now.Add(OTPTTL + time.Second)
	assert.ErrorIs(t, svc.Verify(ctx, models.OTPChannelEmail, "late@example.com", code), ErrOTPExpired)
	assert.ErrorIs(t, svc.Verify(ctx, models.OTPChannelEmail, "late@example.com", code), ErrOTPNotFound)
}

func TestOTPCooldownExpiresInRedis(t *testing.T) {
	mr, client := testutil.NewTestRedis(t)
	svc := NewOTPService(NewRedisOTPStore(client))
	ctx := context.Background()

	_, err := svc.Issue(ctx, models.OTPChannelEmail, "wait@example.com")
	require.NoError(t, err)
	_, err = svc.Issue(ctx, models.OTPChannelEmail, "wait@example.com")
	require.ErrorIs(t, err, ErrOTPCooldown)

	mr.FastForward(OTPCooldown + time.Second)
	_, err = svc.Issue(ctx, models.OTPChannelEmail, "wait@example.com")
	assert.NoError(t, err)
}

func TestOTPAttemptLimitHoldsUnderConcurrency(t *testing.T) {
	for name, store := range otpStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewOTPService(store)

			code, err := svc.Issue(ctx, models.OTPChannelEmail, "race@example.com")
			require.NoError(t, err)
			wrong := "000000"
			if code == wrong {
				wrong = "111111"
			}

			var (
				wg         sync.WaitGroup
				mismatches int32
			)
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					var mismatch *OTPMismatchError
					if errors.As(svc.Verify(ctx, models.OTPChannelEmail, "race@example.com", wrong), &mismatch) {
						atomic.AddInt32(&mismatches, 1)
					}
				}()
			}
			wg.Wait()

			assert.EqualValues(t, OTPMaxAttempts, atomic.LoadInt32(&mismatches), "only the allowed attempts reach the comparison")
			assert.Error(t, svc.Verify(ctx, models.OTPChannelEmail, "race@example.com", code), "the code is burned once the limit is hit")
		})
	}
}

func TestOTPCodeIsConsumedOnce(t *testing.T) {
	for name, store := range otpStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := NewOTPService(store)

			code, err := svc.Issue(ctx, models.OTPChannelEmail, "once@example.com")
			require.NoError(t, err)

			results := make(chan error, 3)
			var wg sync.WaitGroup
			for i := 0; i < 3; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					results <- svc.Verify(ctx, models.OTPChannelEmail, "once@example.com", code)
				}()
			}
			wg.Wait()
			close(results)

			successes := 0
			for err := range results {
				if err == nil {
					successes++
				}
			}
			assert.Equal(t, 1, successes)
		})
	}
}
