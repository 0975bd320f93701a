// Package memory provides in-memory implementations of the repository
// contracts. They honor the same serialization guarantees as the Postgres
// implementations (per-wallet exclusive mutation, canonical lock ordering
// for pairs) and back the service test suites and local development.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"nexapay/internal/models"
	"nexapay/internal/repositories"
)

// WalletStore is an in-memory WalletRepository.
type WalletStore struct {
	mu      sync.Mutex
	nextID  uint
	wallets map[uint]*models.Wallet
	locks   map[uint]*sync.Mutex
}

func NewWalletStore() *WalletStore {
	return &WalletStore{
		nextID:  1,
		wallets: make(map[uint]*models.Wallet),
		locks:   make(map[uint]*sync.Mutex),
	}
}

func (s *WalletStore) Create(ctx context.Context, wallet *models.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if wallet.ID == 0 {
		wallet.ID = s.nextID
		s.nextID++
	} else if wallet.ID >= s.nextID {
		s.nextID = wallet.ID + 1
	}
	now := time.Now().UTC()
	wallet.CreatedAt = now
	wallet.UpdatedAt = now
	cp := *wallet
	s.wallets[wallet.ID] = &cp
	s.locks[wallet.ID] = &sync.Mutex{}
	return nil
}

func (s *WalletStore) GetByID(ctx context.Context, id uint) (*models.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (s *WalletStore) GetByOwnerID(ctx context.Context, ownerID uint) (*models.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wallets {
		if w.OwnerID == ownerID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, repositories.ErrWalletNotFound
}

func (s *WalletStore) AtomicUpdate(ctx context.Context, id uint, fn func(w *models.Wallet) error) (*models.Wallet, error) {
	lock, err := s.walletLock(id)
	if err != nil {
		return nil, err
	}
	lock.Lock()
	defer lock.Unlock()

	w, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	s.commit(w)
	return w, nil
}

func (s *WalletStore) AtomicUpdatePair(ctx context.Context, aID, bID uint, fn func(a, b *models.Wallet) error) error {
	if aID == bID {
		_, err := s.AtomicUpdate(ctx, aID, func(w *models.Wallet) error {
			return fn(w, w)
		})
		return err
	}

	// Acquire per-wallet locks in ascending ID order to avoid deadlock
	// under concurrent opposite-direction transfers.
	ids := []uint{aID, bID}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		lock, err := s.walletLock(id)
		if err != nil {
			return err
		}
		lock.Lock()
		defer lock.Unlock()
	}

	a, err := s.GetByID(ctx, aID)
	if err != nil {
		return err
	}
	b, err := s.GetByID(ctx, bID)
	if err != nil {
		return err
	}
	if err := fn(a, b); err != nil {
		return err
	}
	s.commit(a)
	s.commit(b)
	return nil
}

func (s *WalletStore) walletLock(id uint) (*sync.Mutex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	return lock, nil
}

func (s *WalletStore) commit(w *models.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.UpdatedAt = time.Now().UTC()
	cp := *w
	s.wallets[w.ID] = &cp
}

// TransactionStore is an in-memory TransactionRepository.
type TransactionStore struct {
	mu     sync.Mutex
	nextID uint
	byTxID map[string]*models.Transaction
	byRef  map[string]string
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		nextID: 1,
		byTxID: make(map[string]*models.Transaction),
		byRef:  make(map[string]string),
	}
}

func (s *TransactionStore) Create(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byTxID[tx.TransactionID]; exists {
		return repositories.ErrDuplicateTransaction
	}
	if tx.Reference != "" {
		if _, exists := s.byRef[tx.Reference]; exists {
			return repositories.ErrDuplicateReference
		}
	}
	tx.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	cp := *tx
	s.byTxID[tx.TransactionID] = &cp
	if tx.Reference != "" {
		s.byRef[tx.Reference] = tx.TransactionID
	}
	return nil
}

func (s *TransactionStore) GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.byTxID[transactionID]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (s *TransactionStore) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	s.mu.Lock()
	txID, ok := s.byRef[reference]
	s.mu.Unlock()
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	return s.GetByTransactionID(ctx, txID)
}

func (s *TransactionStore) Update(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byTxID[tx.TransactionID]; !ok {
		return repositories.ErrTransactionNotFound
	}
	tx.UpdatedAt = time.Now().UTC()
	cp := *tx
	s.byTxID[tx.TransactionID] = &cp
	return nil
}

func (s *TransactionStore) UpdateStatusIf(ctx context.Context, transactionID, from, to string, stamp func(tx *models.Transaction)) (*models.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.byTxID[transactionID]
	if !ok {
		return nil, false, repositories.ErrTransactionNotFound
	}
	if tx.Status != from {
		cp := *tx
		return &cp, false, nil
	}
	cp := *tx
	cp.Status = to
	if stamp != nil {
		stamp(&cp)
	}
	cp.UpdatedAt = time.Now().UTC()
	s.byTxID[transactionID] = &cp
	out := cp
	return &out, true, nil
}

func (s *TransactionStore) ListPendingExpired(ctx context.Context, before time.Time, limit int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transaction
	for _, tx := range s.byTxID {
		if tx.Status == models.StatusPending && tx.ExpiresAt.Before(before) {
			out = append(out, *tx)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *TransactionStore) ListProcessingDue(ctx context.Context, before time.Time, limit int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transaction
	for _, tx := range s.byTxID {
		if tx.Status == models.StatusProcessing && tx.NextRetryAt != nil && tx.NextRetryAt.Before(before) {
			out = append(out, *tx)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *TransactionStore) ListByWallet(ctx context.Context, walletID uint, limit, offset int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Transaction
	for _, tx := range s.byTxID {
		if tx.SenderWalletID == walletID || (tx.RecipientWalletID != nil && *tx.RecipientWalletID == walletID) {
			all = append(all, *tx)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Cache is an in-memory CacheRepository.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if !ok || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		return repositories.ErrCacheMiss
	}
	return json.Unmarshal(entry.data, dest)
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := cacheEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
