package firebase

import (
	"testing"

	"firebase.google.com/go/v4/auth"
)

func TestIdentityFromToken(t *testing.T) {
	tests := []struct {
		name    string
		token   *auth.Token
		wantErr bool
		want    string
	}{
		{
			name:  "Email and name",
			token: &auth.Token{UID: "uid-1", Claims: map[string]interface{}{"email": "a@b.co", "name": "Ada"}},
			want:  "a@b.co",
		},
		{
			name:    "Missing email",
			token:   &auth.Token{UID: "uid-1", Claims: map[string]interface{}{}},
			wantErr: true,
		},
		{
			name:    "Missing uid",
			token:   &auth.Token{Claims: map[string]interface{}{"email": "a@b.co"}},
			wantErr: true,
		},
		{
			name:    "Nil token",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := identityFromToken(tt.token)
			if tt.wantErr {
				if err == nil {
					t.Error("identityFromToken() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("identityFromToken() error: %v", err)
			}
			if got.Email != tt.want || got.UID != tt.token.UID {
				t.Errorf("identityFromToken() = %+v", got)
			}
		})
	}
}
