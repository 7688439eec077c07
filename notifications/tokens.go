package notifications

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
)

var ErrInvalidToken = errors.New("invalid or expired approval token")

// ActionClaims is the payload of an emailed accept/reject link. ApproverID is the approver the
// link was mailed to; the link is void once the step is reassigned.
type ActionClaims struct {
	FlowID     uint   `json:"approval_flow_id"`
	ApproverID uint   `json:"approver_id"`
	Action     Action `json:"action"`
	jwt.RegisteredClaims
}

// Tokens signs approval links with HS256.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) Issue(flowID, approverID uint, action Action) (string, error) {
	now := t.now()
	claims := ActionClaims{
		FlowID:     flowID,
		ApproverID: approverID,
		Action:     action,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(flowID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign approval token: %w", err)
	}
	return signed, nil
}

func (t *Tokens) Parse(raw string) (*ActionClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	var claims ActionClaims
	token, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.FlowID == 0 || claims.ApproverID == 0 || (claims.Action != ActionAccept && claims.Action != ActionReject) {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
