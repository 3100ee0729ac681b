package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_IsLive(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{
			name:    "active and not expired",
			session: Session{Active: true, ExpiresAt: now.Add(time.Hour)},
			want:    true,
		},
		{
			name:    "inactive",
			session: Session{Active: false, ExpiresAt: now.Add(time.Hour)},
			want:    false,
		},
		{
			name:    "expired",
			session: Session{Active: true, ExpiresAt: now.Add(-time.Second)},
			want:    false,
		},
		{
			name:    "expiring exactly now",
			session: Session{Active: true, ExpiresAt: now},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.IsLive(now))
		})
	}
}

func TestUser_HasLocalCredential(t *testing.T) {
	assert.True(t, (&User{PasswordHash: "x"}).HasLocalCredential())
	assert.False(t, (&User{}).HasLocalCredential())
}
