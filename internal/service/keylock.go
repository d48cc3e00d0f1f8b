package service

import (
	"bytes"
	"sync"

	"github.com/google/uuid"
)

// keyLock serializes reservation writers per car. The read-check-write cycle
// (load the car's reservations, run the overlap gate, persist) is not atomic
// on its own; holding the car's lock across the cycle guarantees at most one
// winner when two overlapping bookings race — the winner is whoever acquires
// the lock first.
//
// Locks are created lazily and never reclaimed; the map grows with the fleet,
// not with traffic.
type keyLock struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (k *keyLock) get(id uuid.UUID) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	return l
}

// Lock acquires the lock for one car.
func (k *keyLock) Lock(id uuid.UUID) {
	k.get(id).Lock()
}

// Unlock releases the lock for one car.
func (k *keyLock) Unlock(id uuid.UUID) {
	k.get(id).Unlock()
}

// LockPair acquires the locks for two cars in a deterministic (byte) order,
// so two amendments moving reservations between the same pair of cars in
// opposite directions cannot deadlock. Equal ids are locked once.
func (k *keyLock) LockPair(a, b uuid.UUID) {
	if a == b {
		k.Lock(a)
		return
	}
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	k.Lock(a)
	k.Lock(b)
}

// UnlockPair releases locks taken by LockPair.
func (k *keyLock) UnlockPair(a, b uuid.UUID) {
	if a == b {
		k.Unlock(a)
		return
	}
	k.Unlock(a)
	k.Unlock(b)
}
