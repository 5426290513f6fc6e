package relink_test

import (
	"testing"

	"github.com/relinkhq/relink"
	"github.com/stretchr/testify/assert"
)

func TestRegisterUserMessage_Validate(t *testing.T) {
	valid := relink.RegisterUserMessage{
		Name:     "Test User",
		Email:    "test@example.com",
		Phone:    "+12025550123",
		Password: "longEnoughPassword",
	}

	tests := []struct {
		name    string
		mutate  func(m *relink.RegisterUserMessage)
		wantErr bool
	}{
		{
			name:    "valid message",
			mutate:  func(m *relink.RegisterUserMessage) {},
			wantErr: false,
		},
		{
			name:    "phone is optional",
			mutate:  func(m *relink.RegisterUserMessage) { m.Phone = "" },
			wantErr: false,
		},
		{
			name:    "missing name",
			mutate:  func(m *relink.RegisterUserMessage) { m.Name = "" },
			wantErr: true,
		},
		{
			name:    "missing email",
			mutate:  func(m *relink.RegisterUserMessage) { m.Email = "" },
			wantErr: true,
		},
		{
			name:    "malformed email",
			mutate:  func(m *relink.RegisterUserMessage) { m.Email = "not-an-email" },
			wantErr: true,
		},
		{
			name:    "password too short",
			mutate:  func(m *relink.RegisterUserMessage) { m.Password = "short" },
			wantErr: true,
		},
		{
			name:    "missing password",
			mutate:  func(m *relink.RegisterUserMessage) { m.Password = "" },
			wantErr: true,
		},
		{
			name:    "phone too short when provided",
			mutate:  func(m *relink.RegisterUserMessage) { m.Phone = "123" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := valid
			tt.mutate(&msg)

			err := msg.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterUserMessage_Type(t *testing.T) {
	assert.Equal(t, "user.register", relink.RegisterUserMessage{}.Type())
}
