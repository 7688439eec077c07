package notifications

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_RoundTrip(t *testing.T) {
	tk := NewTokens("secret", time.Hour)

	raw, err := tk.Issue(42, 9, ActionReject)
	require.NoError(t, err)

	claims, err := tk.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.FlowID)
	assert.Equal(t, uint(9), claims.ApproverID)
	assert.Equal(t, ActionReject, claims.Action)
	assert.Equal(t, "42", claims.Subject)
}

func TestTokens_Rejects(t *testing.T) {
	tk := NewTokens("secret", time.Hour)
	good, err := tk.Issue(7, 3, ActionAccept)
	require.NoError(t, err)

	expired := NewTokens("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Issue(7, 3, ActionAccept)
	require.NoError(t, err)

	sign := func(c ActionClaims) string {
		c.RegisteredClaims = jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
		require.NoError(t, err)
		return raw
	}
	badAction := sign(ActionClaims{FlowID: 7, ApproverID: 3, Action: "maybe"})
	noApprover := sign(ActionClaims{FlowID: 7, Action: ActionAccept})

	tests := map[string]struct {
		tokens *Tokens
		raw    string
	}{
		"empty":        {tk, ""},
		"garbage":      {tk, "not-a-token"},
		"wrong secret": {NewTokens("other", time.Hour), good},
		"expired":      {tk, old},
		"bad action":   {tk, badAction},
		"no approver":  {tk, noApprover},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tt.tokens.Parse(tt.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
