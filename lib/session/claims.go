// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is an operator role as issued by the auth service. Tokens may
// carry roles this client does not know; they are kept verbatim.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleTech   Role = "TECH"
	RoleGM     Role = "GM"
	RoleViewer Role = "VIEWER"
)

// Roles lists the roles an administrator may assign.
var Roles = []Role{RoleAdmin, RoleTech, RoleGM, RoleViewer}

// ParseRole accepts a role name case-insensitively.
func ParseRole(value string) (Role, error) {
	candidate := Role(strings.ToUpper(strings.TrimSpace(value)))
	for _, role := range Roles {
		if candidate == role {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown role %q (want one of ADMIN, TECH, GM, VIEWER)", value)
}

// Claims is the payload of a Sentient access token.
type Claims struct {
	Sub  string `json:"sub"`
	Role Role   `json:"role"`
	Exp  uint64 `json:"exp"`
	Iat  uint64 `json:"iat"`
}

// ExpiresAt returns exp as a time, or the zero time when exp is unset.
func (c Claims) ExpiresAt() time.Time {
	if c.Exp == 0 {
		return time.Time{}
	}
	return time.Unix(int64(c.Exp), 0)
}

// IssuedAt returns iat as a time, or the zero time when iat is unset.
func (c Claims) IssuedAt() time.Time {
	if c.Iat == 0 {
		return time.Time{}
	}
	return time.Unix(int64(c.Iat), 0)
}

// Expired reports whether exp is set and not after now. Display only;
// an expired-looking token is still sent and the server decides.
func (c Claims) Expired(now time.Time) bool {
	return c.Exp != 0 && !now.Before(c.ExpiresAt())
}

// The jwt.Claims methods let the same type be signed by test backends
// and handed to golang-jwt validators.

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	if c.Exp == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(c.ExpiresAt()), nil
}

func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	if c.Iat == 0 {
		return nil, nil
	}
	return jwt.NewNumericDate(c.IssuedAt()), nil
}

func (c Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }

func (c Claims) GetIssuer() (string, error) { return "", nil }

func (c Claims) GetSubject() (string, error) { return c.Sub, nil }

func (c Claims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode returns the claims in token's payload segment, or nil when the
// token is not three dot-separated segments, the payload is not
// base64url, or the decoded bytes are not a JSON object of the expected
// shape. The signature is not checked.
func Decode(token string) *Claims {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return nil
	}
	payload, err := segmentParser.DecodeSegment(segments[1])
	if err != nil {
		return nil
	}
	var claims *Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil
	}
	return claims
}
