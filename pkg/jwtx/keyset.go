package jwtx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet holds the issuer's public keys by kid. Safe for concurrent use.
type KeySet struct {
	mu   sync.RWMutex
	keys map[string]any
}

func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]any)}
}

// Get returns the public key for kid.
func (k *KeySet) Get(kid string) (any, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pub, ok := k.keys[kid]; ok {
		return pub, nil
	}
	return nil, ErrNoKey
}

// Ready reports whether at least one key is loaded.
func (k *KeySet) Ready() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys) > 0
}

// Reset replaces every key with the contents of jwks. Nothing changes when
// any key fails to decode.
func (k *KeySet) Reset(jwks JWKS) error {
	next := make(map[string]any, len(jwks.Keys))
	for _, j := range jwks.Keys {
		if j.Use != "" && j.Use != "sig" {
			continue
		}
		pub, err := j.PublicKey()
		if err != nil {
			return fmt.Errorf("kid %q: %w", j.Kid, err)
		}
		next[j.Kid] = pub
	}

	k.mu.Lock()
	k.keys = next
	k.mu.Unlock()
	return nil
}

// RemoteKeySet keeps a KeySet in sync with an issuer's jwks endpoint.
type RemoteKeySet struct {
	*KeySet

	url    string
	client *http.Client
	logger *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewRemoteKeySet prepares a key set for url. Call Refresh or Start to load it.
func NewRemoteKeySet(url string, client *http.Client, logger *slog.Logger) *RemoteKeySet {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteKeySet{
		KeySet: NewKeySet(),
		url:    url,
		client: client,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Refresh downloads the jwks document and replaces the loaded keys.
func (r *RemoteKeySet) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build jwks request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch jwks: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&jwks); err != nil {
		return fmt.Errorf("failed to decode jwks: %w", err)
	}
	return r.Reset(jwks)
}

// Start refreshes every interval until Stop is called. A failed refresh keeps
// the previous keys.
func (r *RemoteKeySet) Start(interval time.Duration) {
	go func() {
		defer close(r.doneCh)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if err := r.Refresh(ctx); err != nil {
					r.logger.Warn("jwks refresh failed", "url", r.url, "error", err)
				}
				cancel()
			case <-r.stopCh:
				return
			}
		}
	}()
}

// Stop ends the refresh loop started by Start and waits for it to exit.
func (r *RemoteKeySet) Stop() {
	close(r.stopCh)
	<-r.doneCh
}
