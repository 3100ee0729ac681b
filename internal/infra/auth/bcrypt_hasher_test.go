package auth

import (
	"testing"

	"bountyhub/config"
	domainerrors "bountyhub/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func newHasher() *bcryptHasher {
	cfg := &config.Config{}
	return NewBcryptHasher(cfg).(*bcryptHasher)
}

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := newHasher()

	strongPassword := "StrongSecret123!"
	hash, err := hasher.Hash(strongPassword)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, strongPassword, hash)

	// Verify the hash can be checked
	assert.True(t, hasher.Check(strongPassword, hash))
}

func TestBcryptHasher_HashWithWeakPassword(t *testing.T) {
	hasher := newHasher()

	weakPasswords := []string{
		"123",         // Too short
		"password",    // Forbidden word
		"SECRETS123!", // No lowercase
		"secrets123!", // No uppercase
		"SecretsABC!", // No numbers
		"Secrets1234", // No special characters
	}

	for _, weakPassword := range weakPasswords {
		_, err := hasher.Hash(weakPassword)
		assert.Error(t, err, "Expected error for weak password: %s", weakPassword)
		assert.ErrorIs(t, err, domainerrors.ErrPasswordStrength)
	}
}

func TestBcryptHasher_Check(t *testing.T) {
	hasher := newHasher()
	password := "StrongSecret123!"

	hash, err := hasher.Hash(password)
	assert.NoError(t, err)

	assert.True(t, hasher.Check(password, hash))
	assert.False(t, hasher.Check("WrongSecret123!", hash))
	assert.False(t, hasher.Check("", hash))
	assert.False(t, hasher.Check(password, "invalid_hash"))
}

func TestBcryptHasher_ValidatePasswordStrength(t *testing.T) {
	hasher := newHasher()

	validPasswords := []string{
		"StrongSecret123!",
		"MySecure@Phrase1",
		"Complex#Secret9",
		"Valid$Phrase2024",
	}

	for _, password := range validPasswords {
		err := hasher.ValidatePasswordStrength(password)
		assert.NoError(t, err, "Expected no error for valid password: %s", password)
	}

	testCases := []struct {
		password    string
		expectedErr string
	}{
		{"123", "must be at least 8 characters long"},
		{"SECRETS123!", "must contain at least one lowercase letter"},
		{"secrets123!", "must contain at least one uppercase letter"},
		{"SecretsABC!", "must contain at least one number"},
		{"Secrets1234", "must contain at least one special character"},
		{"MyPassword123!", "contains forbidden words"},
		{"MyAdmin1234!", "contains forbidden words"},
	}

	for _, tc := range testCases {
		err := hasher.ValidatePasswordStrength(tc.password)
		assert.Error(t, err, "Expected error for password: %s", tc.password)
		assert.ErrorIs(t, err, domainerrors.ErrPasswordStrength)
		assert.Contains(t, err.Error(), tc.expectedErr)
	}
}

func TestBcryptHasher_ConfiguredPolicy(t *testing.T) {
	cfg := &config.Config{
		PasswordStrength: &config.PasswordStrengthConfig{
			MinLength:        12,
			MaxLength:        64,
			RequireUppercase: false,
			RequireLowercase: true,
			RequireNumbers:   true,
			RequireSpecial:   false,
		},
	}
	hasher := NewBcryptHasher(cfg)

	// Uppercase and special chars are optional under this policy
	assert.NoError(t, hasher.ValidatePasswordStrength("lowercase1234"))

	// But the longer minimum still applies
	err := hasher.ValidatePasswordStrength("short123")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least 12 characters")
}

func TestBcryptHasher_WithCustomCost(t *testing.T) {
	customCost := 6 // Lower cost for faster testing
	hasher := NewBcryptHasherWithCost(customCost)

	password := "StrongSecret123!"
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)

	// Verify the hash uses the correct cost
	cost, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
	assert.Equal(t, customCost, cost)

	assert.True(t, hasher.Check(password, hash))
}

func TestBcryptHasher_PasswordStrengthHelpers(t *testing.T) {
	hasher := &bcryptHasher{}

	assert.True(t, hasher.hasUppercase("Secret"))
	assert.False(t, hasher.hasUppercase("secret"))

	assert.True(t, hasher.hasLowercase("Secret"))
	assert.False(t, hasher.hasLowercase("SECRET"))

	assert.True(t, hasher.hasNumbers("Secret123"))
	assert.False(t, hasher.hasNumbers("Secret"))

	assert.True(t, hasher.hasSpecialChars("Secret!"))
	assert.False(t, hasher.hasSpecialChars("Secret"))

	words := []string{"password", "admin"}
	assert.True(t, hasher.containsForbiddenWords("MyPassword123", words))
	assert.True(t, hasher.containsForbiddenWords("AdminUser", words))
	assert.False(t, hasher.containsForbiddenWords("SecurePhrase123", words))
}

func TestBcryptHasher_EdgeCases(t *testing.T) {
	hasher := newHasher()

	// Empty password
	err := hasher.ValidatePasswordStrength("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "must be at least 8 characters long")

	// Unicode characters are fine
	err = hasher.ValidatePasswordStrength("Pässphräse123!")
	assert.NoError(t, err)

	// Only special characters fails the letter and number rules
	err = hasher.ValidatePasswordStrength("!@#$%^&*()")
	assert.Error(t, err)
}
