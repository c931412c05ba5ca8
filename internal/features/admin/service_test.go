package admin

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/argon2"
)

// encodeHash собирает хеш в том же формате, что scripts/generate_hash.go.
func encodeHash(password string, salt []byte) string {
	key := argon2.IDKey([]byte(password), salt, 3, 64*1024, 2, 32)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		64*1024, 3, 2,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

func TestVerifyArgon2id(t *testing.T) {
	salt := []byte("0123456789abcdef")
	hash := encodeHash("секретный-пароль", salt)

	assert.True(t, verifyArgon2id("секретный-пароль", hash))
	assert.False(t, verifyArgon2id("неверный", hash))
	assert.False(t, verifyArgon2id("", hash))
}

func TestVerifyArgon2id_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"пустая строка", ""},
		{"не хеш вовсе", "plaintext"},
		{"мало частей", "$argon2id$v=19$m=65536"},
		{"битые параметры", "$argon2id$v=19$каша$c2FsdA$aGFzaA"},
		{"битая соль", "$argon2id$v=19$m=65536,t=3,p=2$фрагмент$aGFzaA"},
		{"битый хеш", "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$фрагмент"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, verifyArgon2id("пароль", tt.hash))
		})
	}
}

func TestDialogStates(t *testing.T) {
	s := NewService(nil, nil, nil, nil)

	assert.Nil(t, s.GetState(1), "у нового пользователя нет состояния")

	s.SetState(1, StateGrantAmount, int64(42))
	state := s.GetState(1)
	if assert.NotNil(t, state) {
		assert.Equal(t, StateGrantAmount, state.State)
		assert.Equal(t, int64(42), state.Data)
	}

	// Состояния изолированы по пользователям
	assert.Nil(t, s.GetState(2))

	s.ClearState(1)
	assert.Nil(t, s.GetState(1))
}

func TestDialogStates_Expiry(t *testing.T) {
	s := NewService(nil, nil, nil, nil)

	s.SetState(1, StateAwaitingPassword, nil)
	s.states[1].ExpiresAt = time.Now().Add(-time.Second)

	assert.Nil(t, s.GetState(1), "протухшее состояние не должно возвращаться")
}

func TestGenerateSecureToken(t *testing.T) {
	a := generateSecureToken()
	b := generateSecureToken()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b, "токены должны быть уникальными")
}
