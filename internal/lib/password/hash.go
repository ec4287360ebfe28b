// Package password реализует хеширование паролей и одноразовые токены сброса.
//
// Hasher создает bcrypt-хеш пароля с настраиваемой стоимостью.
// NewResetToken выпускает случайный токен сброса и его sha256-отпечаток для хранения.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost — стоимость bcrypt по умолчанию.
	DefaultCost = 12
	// MaxLength — предел bcrypt на длину пароля в байтах.
	MaxLength = 72
	// ResetTokenTTL — время жизни токена сброса пароля.
	ResetTokenTTL = 10 * time.Minute

	resetTokenBytes = 32
)

var (
	// ErrMismatch — пароль не соответствует хешу.
	ErrMismatch = errors.New("password mismatch")
	// ErrTooLong — пароль длиннее MaxLength байт.
	ErrTooLong = errors.New("password exceeds 72 bytes")
)

// Hasher хеширует и сравнивает пароли.
type Hasher struct {
	cost int
}

// NewHasher создаёт Hasher; стоимость вне допустимого диапазона bcrypt заменяется на DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash принимает пароль пользователя и возвращает его bcrypt‑хэш.
func (h *Hasher) Hash(password string) (string, error) {
	const op = "password.Hash"
	if len(password) > MaxLength {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Compare сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, ErrMismatch при несовпадении.
func (h *Hasher) Compare(hash, password string) error {
	const op = "password.Compare"
	if len(password) > MaxLength {
		return fmt.Errorf("%s: %w", op, ErrMismatch)
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return fmt.Errorf("%s: %w", op, ErrMismatch)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// ResetToken — выпущенный токен сброса пароля.
type ResetToken struct {
	Plain     string    // отправляется пользователю
	Hash      string    // хранится в базе
	ExpiresAt time.Time
}

// NewResetToken выпускает токен сброса из 32 случайных байт.
func NewResetToken(now time.Time) (ResetToken, error) {
	const op = "password.NewResetToken"
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return ResetToken{}, fmt.Errorf("%s: %w", op, err)
	}
	plain := hex.EncodeToString(buf)
	return ResetToken{
		Plain:     plain,
		Hash:      HashResetToken(plain),
		ExpiresAt: now.Add(ResetTokenTTL),
	}, nil
}

// HashResetToken возвращает sha256-отпечаток токена в hex.
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
