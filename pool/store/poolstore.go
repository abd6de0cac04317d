package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	sdkmath "cosmossdk.io/math"

	"github.com/stakepool/staking-pool/pool"
	"github.com/stakepool/staking-pool/store"
	"github.com/stakepool/staking-pool/store/bbolt"
	"github.com/stakepool/staking-pool/types"
	"github.com/stakepool/staking-pool/util"
)

const (
	investorPrefix = "investor/"

	supplyKey          = "supply"
	investmentInfoKey  = "investment-info"
	pendingOwnerTaxKey = "pending-owner-tax"
)

// PoolStore persists the pool's state. All records are JSON documents with
// string-encoded integers, matching the wire encoding of the depositor-facing
// API, so a db dump is directly readable.
type PoolStore struct {
	s store.Store
}

func NewPoolStore(dbPath string, dbName string, dbBackend string) (*PoolStore, error) {
	if err := util.MakeDirectory(filepath.Dir(dbPath)); err != nil {
		return nil, err
	}

	s, err := openStore(dbPath, dbName, dbBackend)
	if err != nil {
		return nil, err
	}

	return &PoolStore{s: s}, nil
}

func investorKey(addr string) []byte {
	return []byte(investorPrefix + addr)
}

// SaveInvestmentInfo stores the immutable pool configuration. It refuses to
// overwrite an existing one.
func (ps *PoolStore) SaveInvestmentInfo(info *types.InvestmentInfo) error {
	exists, err := ps.s.Exists([]byte(investmentInfoKey))
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("the investment info is immutable once set")
	}

	v, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal the investment info: %w", err)
	}

	if err := ps.s.Put([]byte(investmentInfoKey), v); err != nil {
		return fmt.Errorf("failed to save the investment info: %w", err)
	}

	return nil
}

func (ps *PoolStore) GetInvestmentInfo() (*types.InvestmentInfo, error) {
	exists, err := ps.s.Exists([]byte(investmentInfoKey))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrInvestmentInfoNotFound
	}

	v, err := ps.s.Get([]byte(investmentInfoKey))
	if err != nil {
		return nil, err
	}

	info := new(types.InvestmentInfo)
	if err := json.Unmarshal(v, info); err != nil {
		return nil, ErrCorruptedPoolDb
	}

	return info, nil
}

// LoadState reads the complete pool state. A db without any pool records
// yields a fresh empty state.
func (ps *PoolStore) LoadState() (*pool.State, error) {
	st := pool.NewState()

	exists, err := ps.s.Exists([]byte(supplyKey))
	if err != nil {
		return nil, err
	}
	if exists {
		v, err := ps.s.Get([]byte(supplyKey))
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(v, &st.Supply); err != nil {
			return nil, ErrCorruptedPoolDb
		}
	}

	exists, err = ps.s.Exists([]byte(pendingOwnerTaxKey))
	if err != nil {
		return nil, err
	}
	if exists {
		v, err := ps.s.Get([]byte(pendingOwnerTaxKey))
		if err != nil {
			return nil, err
		}
		tax, ok := sdkmath.NewIntFromString(string(v))
		if !ok {
			return nil, ErrCorruptedPoolDb
		}
		st.PendingOwnerTax = tax
	}

	kvList, err := ps.s.List([]byte(investorPrefix))
	if err != nil {
		return nil, err
	}
	for _, kv := range kvList {
		addr := string(bytes.TrimPrefix(kv.Key, []byte(investorPrefix)))
		shares, ok := sdkmath.NewIntFromString(string(kv.Value))
		if !ok {
			return nil, ErrCorruptedPoolDb
		}
		st.Balances[addr] = shares
	}

	return st, nil
}

// CommitState writes the difference between the previously committed state and
// the new one in a single transaction, so no partial share minting or debit is
// ever observable, even across a crash.
func (ps *PoolStore) CommitState(prev, next *pool.State) error {
	supplyBytes, err := json.Marshal(next.Supply)
	if err != nil {
		return fmt.Errorf("failed to marshal the supply: %w", err)
	}

	puts := []*store.KVPair{
		{Key: []byte(supplyKey), Value: supplyBytes},
		{Key: []byte(pendingOwnerTaxKey), Value: []byte(next.PendingOwnerTax.String())},
	}

	var deletes [][]byte
	for addr, shares := range next.Balances {
		if prev != nil {
			if held, ok := prev.Balances[addr]; ok && held.Equal(shares) {
				continue
			}
		}
		puts = append(puts, &store.KVPair{
			Key:   investorKey(addr),
			Value: []byte(shares.String()),
		})
	}
	if prev != nil {
		for addr := range prev.Balances {
			if _, ok := next.Balances[addr]; !ok {
				deletes = append(deletes, investorKey(addr))
			}
		}
	}

	if err := ps.s.WriteBatch(puts, deletes); err != nil {
		return fmt.Errorf("failed to commit the pool state: %w", err)
	}

	return nil
}

func (ps *PoolStore) Close() error {
	return ps.s.Close()
}

// openStore returns a Store instance with the given db type, path and name
// currently, we only support bbolt
func openStore(dbPath string, dbName string, dbBackend string) (store.Store, error) {
	switch dbBackend {
	case "bbolt":
		return bbolt.NewBboltStore(bbolt.Options{
			Path:       dbPath,
			BucketName: dbName,
		})
	default:
		return nil, fmt.Errorf("unsupported database type")
	}
}
