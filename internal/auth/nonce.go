package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"lukechampine.com/blake3"
)

// ErrInvalidNonce is returned when a nonce does not verify for the action and user.
var ErrInvalidNonce = errors.New("invalid nonce")

// NonceService issues short anti-forgery tokens bound to an action and a user.
// Time is cut into ticks of half the lifetime; a nonce verifies during the tick it
// was created in and the one after.
type NonceService struct {
	key      [32]byte
	lifetime time.Duration
	now      func() time.Time
}

// NewNonceService derives the keyed hash key from secret.
func NewNonceService(secret string, lifetime time.Duration) *NonceService {
	return &NonceService{
		key:      blake3.Sum256([]byte(secret)),
		lifetime: lifetime,
		now:      time.Now,
	}
}

func (s *NonceService) tick() int64 {
	half := s.lifetime / 2
	if half <= 0 {
		half = time.Second
	}
	return s.now().UnixNano() / int64(half)
}

func (s *NonceService) sum(action, userID string, tick int64) string {
	h := blake3.New(32, s.key[:])
	h.Write([]byte(strconv.FormatInt(tick, 10)))
	h.Write([]byte{0})
	h.Write([]byte(action))
	h.Write([]byte{0})
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))[:20]
}

// Create returns the nonce for action and userID at the current tick.
func (s *NonceService) Create(action, userID string) string {
	return s.sum(action, userID, s.tick())
}

// Verify checks nonce against the current and previous tick.
func (s *NonceService) Verify(nonce, action, userID string) error {
	if nonce == "" {
		return ErrInvalidNonce
	}
	t := s.tick()
	for _, candidate := range []int64{t, t - 1} {
		if subtle.ConstantTimeCompare([]byte(nonce), []byte(s.sum(action, userID, candidate))) == 1 {
			return nil
		}
	}
	return ErrInvalidNonce
}
