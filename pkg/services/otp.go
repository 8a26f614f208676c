package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"petshop_backend/pkg/models"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	OTPLength      = 6
	OTPTTL         = 5 * time.Minute
	OTPCooldown    = 60 * time.Second
	OTPMaxAttempts = 3
)

var (
	ErrOTPNotFound        = errors.New("No OTP found. Please request a new one.")
	ErrOTPExpired         = errors.New("OTP has expired. Please request a new one.")
	ErrOTPTooManyAttempts = errors.New("Too many attempts. Please request a new OTP.")
	ErrOTPCooldown        = errors.New("Please wait before requesting another OTP.")
)

// OTPMismatchError is returned for a wrong code that still has attempts left
type OTPMismatchError struct {
	Remaining int
}

func (e *OTPMismatchError) Error() string {
	return fmt.Sprintf("Invalid OTP. %d attempts remaining.", e.Remaining)
}

// OTPEntry stores the code and its expiry; attempts are counted separately
type OTPEntry struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// OTPStore persists OTP entries, their attempt counters and send cooldowns
type OTPStore interface {
	Get(ctx context.Context, key string) (*OTPEntry, error)
	// Save stores a fresh entry and resets its attempt counter
	Save(ctx context.Context, key string, entry OTPEntry, ttl time.Duration) error
	// IncrAttempts atomically bumps the attempt counter and returns the new value
	IncrAttempts(ctx context.Context, key string, ttl time.Duration) (int, error)
	// Consume removes the entry and reports whether this call was the one that removed it.
	// The attempt counter is left to expire so stale readers keep counting past the limit.
	Consume(ctx context.Context, key string) (bool, error)
	// Reserve returns false while a cooldown for key is active
	Reserve(ctx context.Context, key string, cooldown time.Duration) (bool, error)
}

// OTPKey builds the storage key for a channel/destination pair
func OTPKey(channel models.OTPChannel, destination string) string {
	return fmt.Sprintf("otp:%s:%s", channel, strings.ToLower(strings.TrimSpace(destination)))
}

func attemptsKey(key string) string {
	return key + ":attempts"
}

// OTPService issues and verifies one-time codes
type OTPService struct {
	store OTPStore
	now   func() time.Time
}

// OTP is the process-wide service, set up by InitOTP
var OTP *OTPService

// NewOTPService creates a service backed by store
func NewOTPService(store OTPStore) *OTPService {
	return &OTPService{store: store, now: time.Now}
}

// InitOTP picks Redis when a client is available, the in-memory store otherwise
func InitOTP(client *redis.Client) {
	if client != nil {
		OTP = NewOTPService(NewRedisOTPStore(client))
		return
	}
	OTP = NewOTPService(NewMemoryOTPStore())
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}

// Issue generates and stores a fresh code. A second call inside the cooldown fails with ErrOTPCooldown.
func (s *OTPService) Issue(ctx context.Context, channel models.OTPChannel, destination string) (string, error) {
	key := OTPKey(channel, destination)

	ok, err := s.store.Reserve(ctx, key, OTPCooldown)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrOTPCooldown
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	entry := OTPEntry{Code: code, ExpiresAt: s.now().Add(OTPTTL)}
	// keep the entry a little past expiry so verify can report it as expired
	if err := s.store.Save(ctx, key, entry, OTPTTL+time.Minute); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks code against the stored entry. The attempt is counted before the
// comparison, so parallel guesses cannot exceed OTPMaxAttempts. Success consumes the entry.
func (s *OTPService) Verify(ctx context.Context, channel models.OTPChannel, destination, code string) error {
	key := OTPKey(channel, destination)

	entry, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}

	if s.now().After(entry.ExpiresAt) {
		s.discard(ctx, key)
		return ErrOTPExpired
	}

	attempts, err := s.store.IncrAttempts(ctx, key, OTPTTL+time.Minute)
	if err != nil {
		return err
	}
	if attempts > OTPMaxAttempts {
		s.discard(ctx, key)
		return ErrOTPTooManyAttempts
	}

	if entry.Code != strings.TrimSpace(code) {
		return &OTPMismatchError{Remaining: OTPMaxAttempts - attempts}
	}

	consumed, err := s.store.Consume(ctx, key)
	if err != nil {
		return err
	}
	if !consumed {
		return ErrOTPNotFound
	}
	return nil
}

func (s *OTPService) discard(ctx context.Context, key string) {
	if _, err := s.store.Consume(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to discard otp entry")
	}
}

// RedisOTPStore keeps entries as JSON strings next to an INCR attempt counter
type RedisOTPStore struct {
	client *redis.Client
}

func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client}
}

func (s *RedisOTPStore) Get(ctx context.Context, key string) (*OTPEntry, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrOTPNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("otp lookup: %w", err)
	}
	var entry OTPEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("otp decode: %w", err)
	}
	return &entry, nil
}

func (s *RedisOTPStore) Save(ctx context.Context, key string, entry OTPEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, payload, ttl)
		pipe.Del(ctx, attemptsKey(key))
		return nil
	})
	return err
}

func (s *RedisOTPStore) IncrAttempts(ctx context.Context, key string, ttl time.Duration) (int, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, attemptsKey(key))
		pipe.Expire(ctx, attemptsKey(key), ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("otp attempts: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RedisOTPStore) Consume(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *RedisOTPStore) Reserve(ctx context.Context, key string, cooldown time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key+":cooldown", 1, cooldown).Result()
}

// MemoryOTPStore is the single-instance fallback used without Redis
type MemoryOTPStore struct {
	mu      sync.Mutex
	entries *cache.Cache
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{entries: cache.New(OTPTTL, 10*time.Minute)}
}

func (s *MemoryOTPStore) Get(_ context.Context, key string) (*OTPEntry, error) {
	v, found := s.entries.Get(key)
	if !found {
		return nil, ErrOTPNotFound
	}
	entry := v.(OTPEntry)
	return &entry, nil
}

func (s *MemoryOTPStore) Save(_ context.Context, key string, entry OTPEntry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Set(key, entry, ttl)
	s.entries.Delete(attemptsKey(key))
	return nil
}

func (s *MemoryOTPStore) IncrAttempts(_ context.Context, key string, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.entries.Add(attemptsKey(key), 1, ttl); err == nil {
		return 1, nil
	}
	return s.entries.IncrementInt(attemptsKey(key), 1)
}

func (s *MemoryOTPStore) Consume(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, found := s.entries.Get(key)
	s.entries.Delete(key)
	return found, nil
}

func (s *MemoryOTPStore) Reserve(_ context.Context, key string, cooldown time.Duration) (bool, error) {
	if err := s.entries.Add(key+":cooldown", true, cooldown); err != nil {
		return false, nil
	}
	return true, nil
}
