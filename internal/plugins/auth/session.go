package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionKeyPrefix is the Redis key prefix for session data.
const sessionKeyPrefix = "session:"

// sessionTokenBytes is the number of random bytes in a session token,
// hex-encoded to twice as many characters.
const sessionTokenBytes = 32

// errNoSession is returned by sessionStore.get for unknown or expired tokens.
var errNoSession = errors.New("no such session")

// sessionStore keeps sessions in Redis as JSON under session:<token>.
// Reading a session pushes its expiry out by the full TTL, so a user who
// keeps editing is never logged out in the middle of a dialog.
type sessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func newSessionStore(rdb *redis.Client, ttl time.Duration) *sessionStore {
	return &sessionStore{rdb: rdb, ttl: ttl}
}

// create stores s under a new random token and returns the token.
func (st *sessionStore) create(ctx context.Context, s *Session) (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	token := hex.EncodeToString(b)

	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshaling session: %w", err)
	}
	if err := st.rdb.Set(ctx, sessionKeyPrefix+token, data, st.ttl).Err(); err != nil {
		return "", fmt.Errorf("storing session in Redis: %w", err)
	}
	return token, nil
}

// get loads a session and renews its expiry.
func (st *sessionStore) get(ctx context.Context, token string) (*Session, error) {
	data, err := st.rdb.GetEx(ctx, sessionKeyPrefix+token, st.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("reading session from Redis: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshaling session: %w", err)
	}
	return &s, nil
}

// destroy removes a session. Unknown tokens are not an error.
func (st *sessionStore) destroy(ctx context.Context, token string) error {
	if err := st.rdb.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("deleting session from Redis: %w", err)
	}
	return nil
}
