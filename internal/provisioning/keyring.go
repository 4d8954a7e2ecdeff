package provisioning

import (
	"context"
	"fmt"
	"os"
	"sync"

	"truetrace/pkg/domain"
	"truetrace/pkg/platform/sentinel"
)

// KeyRing resolves the private keys of provisioned accounts.
type KeyRing struct {
	mu   sync.RWMutex
	keys map[domain.AccountID]string
}

func NewKeyRing(accounts []Account) *KeyRing {
	k := &KeyRing{keys: make(map[domain.AccountID]string, len(accounts))}
	for _, a := range accounts {
		k.keys[a.AccountID] = a.PrivateKey
	}
	return k
}

// LoadKeyRing reads an accounts file. A missing file surfaces as
// fs.ErrNotExist.
func LoadKeyRing(path string) (*KeyRing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open accounts file: %w", err)
	}
	defer f.Close()
	accounts, err := ReadAccounts(f)
	if err != nil {
		return nil, err
	}
	return NewKeyRing(accounts), nil
}

func (k *KeyRing) PrivateKey(_ context.Context, accountID domain.AccountID) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok := k.keys[accountID]
	if !ok || key == "" {
		return "", sentinel.ErrNotFound
	}
	return key, nil
}

// Len is the number of known accounts.
func (k *KeyRing) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys)
}
