package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
)

// JWK is a public signing key in JSON Web Key form (RFC 7517).
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`
	Kid string `json:"kid,omitempty"`

	// RSA
	N string `json:"n,omitempty"`
	E string `json:"e,omitempty"`

	// OKP and EC
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
}

// JWKS is the document served by an issuer's jwks endpoint.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// PublicKey decodes j into *rsa.PublicKey, ed25519.PublicKey or
// *ecdsa.PublicKey (P-256 only).
func (j JWK) PublicKey() (any, error) {
	switch j.Kty {
	case "RSA":
		n, err := decodeInt(j.N)
		if err != nil {
			return nil, fmt.Errorf("jwtx: rsa modulus: %w", err)
		}
		e, err := decodeInt(j.E)
		if err != nil {
			return nil, fmt.Errorf("jwtx: rsa exponent: %w", err)
		}
		if !e.IsInt64() || e.Int64() > 1<<31-1 {
			return nil, errors.New("jwtx: rsa exponent out of range")
		}
		return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil

	case "OKP":
		if j.Crv != "Ed25519" {
			return nil, fmt.Errorf("jwtx: unsupported OKP curve %q", j.Crv)
		}
		x, err := base64.RawURLEncoding.DecodeString(j.X)
		if err != nil {
			return nil, fmt.Errorf("jwtx: ed25519 key: %w", err)
		}
		if len(x) != ed25519.PublicKeySize {
			return nil, errors.New("jwtx: invalid Ed25519 public key size")
		}
		return ed25519.PublicKey(x), nil

	case "EC":
		if j.Crv != "P-256" {
			return nil, fmt.Errorf("jwtx: unsupported EC curve %q", j.Crv)
		}
		x, err := decodeInt(j.X)
		if err != nil {
			return nil, fmt.Errorf("jwtx: ec x: %w", err)
		}
		y, err := decodeInt(j.Y)
		if err != nil {
			return nil, fmt.Errorf("jwtx: ec y: %w", err)
		}
		return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
	}

	return nil, fmt.Errorf("jwtx: unsupported kty %q", j.Kty)
}

func decodeInt(s string) (*big.Int, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.New("empty value")
	}
	return new(big.Int).SetBytes(b), nil
}
