package kyc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/identra/identra/internal/identity"
)

func TestDecide(t *testing.T) {
	unverified := &identity.User{ID: "u1", KYCStatus: identity.KYCUnverified}
	pending := &identity.User{ID: "u2", KYCStatus: identity.KYCPending}
	verified := &identity.User{ID: "u3", KYCStatus: identity.KYCVerified}

	tests := []struct {
		name string
		user *identity.User
		path string
		want Decision
	}{
		{"anonymous profile", nil, "/profile", RedirectLogin},
		{"anonymous kyc page", nil, "/kyc-verify", RedirectLogin},
		{"anonymous logout", nil, "/logout", RedirectLogin},
		{"unverified profile", unverified, "/profile", RedirectVerify},
		{"unverified kyc page", unverified, "/kyc-verify", Allow},
		{"unverified logout", unverified, "/logout", Allow},
		{"unverified near-miss path", unverified, "/kyc-verify/extra", RedirectVerify},
		{"pending profile", pending, "/profile", RedirectVerify},
		{"pending kyc page", pending, "/kyc-verify", Allow},
		{"verified profile", verified, "/profile", Allow},
		{"verified kyc page", verified, "/kyc-verify", Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.user, tt.path))
		})
	}
}
