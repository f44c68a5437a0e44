// Package auth guards admin operations with an argon2id-hashed PIN.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP recommended)
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// ErrDenied is returned when a PIN does not match.
var ErrDenied = errors.New("admin PIN rejected")

// HashPIN creates an Argon2id hash of pin in the form
// $argon2id$v=19$m=65536,t=1,p=4$salt$hash.
func HashPIN(pin string) (string, error) {
	if pin == "" {
		return "", fmt.Errorf("PIN must not be empty")
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(pin), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads, b64Salt, b64Hash), nil
}

// VerifyPIN reports whether pin matches an Argon2id hash. A malformed hash
// is an error, a wrong PIN is not.
func VerifyPIN(pin, hash string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		return false, fmt.Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return false, fmt.Errorf("not an argon2id hash")
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, fmt.Errorf("failed to parse hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	computedHash := argon2.IDKey([]byte(pin), salt, time, memory, uint8(threads), uint32(len(decodedHash)))
	return subtle.ConstantTimeCompare(decodedHash, computedHash) == 1, nil
}

// Gate checks admin credentials. A Gate without a hash is open.
type Gate struct {
	Name string
	Hash string
}

// Open reports whether the gate lets everyone through.
func (g Gate) Open() bool {
	return g.Hash == ""
}

// Check verifies pin. It returns nil for an open gate, ErrDenied for a
// wrong PIN and a descriptive error for a malformed hash.
func (g Gate) Check(pin string) error {
	if g.Open() {
		return nil
	}
	ok, err := VerifyPIN(pin, g.Hash)
	if err != nil {
		return fmt.Errorf("admin_pin_hash: %w", err)
	}
	if !ok {
		return ErrDenied
	}
	return nil
}

// Middleware enforces HTTP Basic Auth with the admin name and PIN.
func (g Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.Open() {
			next.ServeHTTP(w, r)
			return
		}

		user, pin, ok := r.BasicAuth()
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(g.Name)) == 1

		pinOK := false
		if ok && userMatch {
			err := g.Check(pin)
			if err != nil && !errors.Is(err, ErrDenied) {
				log.Printf("Error verifying admin PIN: %v", err)
			}
			pinOK = err == nil
		}

		if !ok || !userMatch || !pinOK {
			w.Header().Set("WWW-Authenticate", `Basic realm="azt admin"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			log.Printf("Failed admin auth attempt from %s (user: %s)", r.RemoteAddr, user)
			return
		}

		next.ServeHTTP(w, r)
	})
}
