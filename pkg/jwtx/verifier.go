package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrKeyType     = errors.New("jwtx: key type does not match algorithm")
	ErrMissingKID  = errors.New("jwtx: missing kid")
)

// Verifier checks a bearer token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// VerifyOptions are the expectations every accepted token must meet.
type VerifyOptions struct {
	// Issuer is compared with iss. Empty accepts any issuer.
	Issuer string

	// Audience must share at least one value with aud. Empty accepts any.
	Audience []string

	// Leeway absorbs clock skew on exp and nbf.
	Leeway time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// KeyVerifier accepts EdDSA, ES256 and RS256 tokens whose kid is in keys.
type KeyVerifier struct {
	keys *KeySet
	opts VerifyOptions
}

func NewVerifier(keys *KeySet, opts VerifyOptions) *KeyVerifier {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &KeyVerifier{keys: keys, opts: opts}
}

var supportedAlgs = []string{
	jwt.SigningMethodEdDSA.Alg(),
	jwt.SigningMethodES256.Alg(),
	jwt.SigningMethodRS256.Alg(),
}

func (v *KeyVerifier) Verify(raw string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods(supportedAlgs),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(raw, &Claims{}, v.keyFunc)
	if err != nil {
		return Claims{}, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, errors.New("jwtx: invalid token claims")
	}

	if err := claims.ValidateIssuer(v.opts.Issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.opts.Audience); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateTimes(v.opts.Now(), v.opts.Leeway); err != nil {
		return Claims{}, err
	}
	return *claims, nil
}

// keyFunc selects the key named by the kid header and makes sure its type
// matches the token's algorithm.
func (v *KeyVerifier) keyFunc(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, ErrMissingKID
	}

	pub, err := v.keys.Get(kid)
	if err != nil {
		return nil, fmt.Errorf("unknown kid %q: %w", kid, err)
	}

	switch t.Method.Alg() {
	case jwt.SigningMethodEdDSA.Alg():
		if k, ok := pub.(ed25519.PublicKey); ok {
			return k, nil
		}
	case jwt.SigningMethodES256.Alg():
		if k, ok := pub.(*ecdsa.PublicKey); ok {
			return k, nil
		}
	case jwt.SigningMethodRS256.Alg():
		if k, ok := pub.(*rsa.PublicKey); ok {
			return k, nil
		}
	}
	return nil, ErrKeyType
}
