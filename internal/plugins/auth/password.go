package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// passwordParams are the argon2id cost settings. Hashes record the
// settings they were made with, so changing them only affects new hashes;
// older ones are upgraded at the next successful login.
type passwordParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// defaultPasswordParams follow the OWASP argon2id recommendation.
var defaultPasswordParams = passwordParams{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

// hash creates an encoded argon2id hash:
// $argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<key>
func (p passwordParams) hash(password string) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// verify checks password against an encoded hash. stale is set when the
// password matched but the hash was made with other settings than p.
func (p passwordParams) verify(password, encoded string) (ok, stale bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, false
	}

	var used passwordParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &used.Memory, &used.Time, &used.Threads); err != nil {
		return false, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 {
		return false, false
	}
	used.SaltLen, used.KeyLen = uint32(len(salt)), uint32(len(want))

	got := argon2.IDKey([]byte(password), salt, used.Time, used.Memory, used.Threads, used.KeyLen)
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return false, false
	}
	return true, used != p
}
