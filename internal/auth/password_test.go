package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  false, // bcrypt позволяет пустые пароли
		},
		{
			name:     "special characters",
			password: "p@ssw0rd!#$%",
			wantErr:  false,
		},
		{
			name:     "unicode password",
			password: "пароль123",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("HashPassword() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if hash == "" {
					t.Error("HashPassword() returned empty hash")
				}
				if hash == tt.password {
					t.Error("HashPassword() returned plaintext password")
				}
				if !strings.HasPrefix(hash, "$2") {
					t.Errorf("HashPassword() hash has unexpected format: %s", hash)
				}
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	password := "password123"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	t.Run("correct password", func(t *testing.T) {
		if !CheckPassword(password, hash) {
			t.Error("CheckPassword() = false, want true")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if CheckPassword("wrong-password", hash) {
			t.Error("CheckPassword() = true, want false")
		}
	})

	t.Run("invalid hash", func(t *testing.T) {
		if CheckPassword(password, "not-a-hash") {
			t.Error("CheckPassword() = true, want false")
		}
	})
}
