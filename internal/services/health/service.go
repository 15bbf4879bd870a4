package health

import (
	"context"
	"errors"
	"time"

	"profileplus/internal/shared/storage/kv"
)

const probeKey = "profileplus_health"

// Status is the health payload.
type Status struct {
	OK    bool   `json:"ok"`
	Store string `json:"store"`
}

// Service reports whether the process and its store are usable.
type Service struct {
	Store  kv.Store
	Driver string
}

// NewService constructs a new health service.
func NewService(store kv.Store, driver string) *Service {
	return &Service{Store: store, Driver: driver}
}

// Status reads a probe key from the store. A missing key counts as healthy.
func (s *Service) Status(ctx context.Context) Status {
	if s.Store == nil {
		return Status{OK: true, Store: "none"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := s.Store.Get(ctx, probeKey); err != nil && !errors.Is(err, kv.ErrNotFound) {
		return Status{OK: false, Store: s.Driver + ": unavailable"}
	}
	return Status{OK: true, Store: s.Driver}
}
