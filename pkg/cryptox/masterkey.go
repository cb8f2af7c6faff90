package cryptox

import (
	"bytes"
	"fmt"
	"os"
)

// LoadMasterKey reads key material from path when set, otherwise from the
// environment variable envKey. Surrounding whitespace is ignored. It returns
// ErrNoMasterKey when neither yields anything.
func LoadMasterKey(path, envKey string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read master key file: %w", err)
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 {
			return nil, fmt.Errorf("master key file %s: %w", path, ErrNoMasterKey)
		}
		return data, nil
	}

	if v := bytes.TrimSpace([]byte(os.Getenv(envKey))); len(v) > 0 {
		return v, nil
	}
	return nil, ErrNoMasterKey
}

// EphemeralMasterKey returns random key material for development. Secrets
// sealed with it cannot be opened after a restart.
func EphemeralMasterKey() ([]byte, error) {
	tok, err := GenerateToken(TokenSize256)
	if err != nil {
		return nil, err
	}
	return []byte(tok), nil
}
