package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/servicehub/errors"
	"github.com/kbukum/servicehub/logger"
)

// Store is the in-memory registry of service records. A single RWMutex guards
// both indexes, so upsert-by-name and sweep demotions are serialized; reads
// return deep copies.
type Store struct {
	mu     sync.RWMutex
	byID   map[string]*Service
	byName map[string]string

	log *logger.Logger
	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		byID:   make(map[string]*Service),
		byName: make(map[string]string),
		log:    logger.WithComponent("store"),
		now:    time.Now,
	}
}

// Register creates a record, or replaces the existing record with the same
// name. On replace the ID and CreatedAt survive, every registration field is
// overwritten, the endpoint list is replaced wholesale, and the record comes
// back active with a fresh heartbeat. The second return value reports whether
// a new record was created.
func (s *Store) Register(req RegisterRequest) (*Service, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()

	svc, exists := s.lookupByName(req.Name)
	created := !exists
	if !exists {
		svc = &Service{
			ID:        uuid.NewString(),
			Name:      req.Name,
			CreatedAt: now,
		}
		s.byID[svc.ID] = svc
		s.byName[svc.Name] = svc.ID
	}

	svc.DisplayName = req.DisplayName
	svc.Description = req.Description
	svc.Version = req.Version
	svc.Host = req.Host
	svc.Port = req.Port
	svc.BasePath = req.BasePath
	if svc.BasePath == "" {
		svc.BasePath = "/"
	}
	svc.HealthCheckURL = req.HealthCheckURL
	svc.Metadata = req.Metadata
	if svc.Metadata == nil {
		svc.Metadata = make(map[string]any)
	}
	svc.Tags = req.Tags
	if svc.Tags == nil {
		svc.Tags = []string{}
	}
	svc.RequiresAuth = true
	if req.RequiresAuth != nil {
		svc.RequiresAuth = *req.RequiresAuth
	}
	svc.APIKey = req.APIKey
	svc.IsActive = true
	svc.LastHeartbeat = now
	svc.UpdatedAt = now

	svc.Endpoints = make([]Endpoint, 0, len(req.Endpoints))
	for _, ep := range req.Endpoints {
		svc.Endpoints = append(svc.Endpoints, Endpoint{
			ID:            uuid.NewString(),
			ServiceID:     svc.ID,
			Path:          ep.Path,
			Method:        ep.Method,
			Description:   ep.Description,
			RequiredRoles: append([]string{}, ep.RequiredRoles...),
			IsPublic:      ep.IsPublic,
			RateLimit:     ep.RateLimit,
			CreatedAt:     now,
		})
	}

	s.log.Info("service registered", logger.Fields(
		"name", svc.Name,
		"id", svc.ID,
		"created", created,
		"endpoints", len(svc.Endpoints),
	))
	return svc.Clone(), created
}

// Heartbeat refreshes a record's liveness: LastHeartbeat moves to now, the
// record reactivates if it was demoted, and metadata keys from the request
// overwrite existing keys (shallow merge, other keys are kept).
func (s *Store) Heartbeat(req HeartbeatRequest) (*Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.byID[req.ServiceID]
	if !ok {
		return nil, errors.NotFound("service", req.ServiceID)
	}

	svc.LastHeartbeat = s.now().UTC()
	svc.IsActive = true
	for k, v := range req.Metadata {
		svc.Metadata[k] = v
	}
	return svc.Clone(), nil
}

// Deregister marks a record inactive. The record remains readable and can be
// reactivated by a later registration or heartbeat.
func (s *Store) Deregister(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.byID[id]
	if !ok {
		return errors.NotFound("service", id)
	}
	svc.IsActive = false

	s.log.Info("service deregistered", logger.Fields("name", svc.Name, "id", id))
	return nil
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (*Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.byID[id]
	if !ok {
		return nil, errors.NotFound("service", id)
	}
	return svc.Clone(), nil
}

// GetByName returns the record with the given routing name.
func (s *Store) GetByName(name string) (*Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.lookupByName(name)
	if !ok {
		return nil, errors.NotFound("service", name)
	}
	return svc.Clone(), nil
}

// List returns all records, or only active ones when activeOnly is set.
func (s *Store) List(activeOnly bool) []*Service {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Service, 0, len(s.byID))
	for _, svc := range s.byID {
		if activeOnly && !svc.IsActive {
			continue
		}
		out = append(out, svc.Clone())
	}
	return out
}

// Update patches the mutable fields of a record. Only non-nil fields of the
// request are applied.
func (s *Store) Update(id string, req UpdateRequest) (*Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.byID[id]
	if !ok {
		return nil, errors.NotFound("service", id)
	}

	if req.DisplayName != nil {
		svc.DisplayName = *req.DisplayName
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}
	if req.Metadata != nil {
		svc.Metadata = *req.Metadata
		if svc.Metadata == nil {
			svc.Metadata = make(map[string]any)
		}
	}
	if req.Tags != nil {
		svc.Tags = *req.Tags
	}
	svc.UpdatedAt = s.now().UTC()

	return svc.Clone(), nil
}

// Delete removes a record and its endpoints entirely.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.byID[id]
	if !ok {
		return errors.NotFound("service", id)
	}
	delete(s.byName, svc.Name)
	delete(s.byID, id)

	s.log.Info("service deleted", logger.Fields("name", svc.Name, "id", id))
	return nil
}

// DemoteStale marks every active record whose last heartbeat is older than
// threshold as inactive and returns the demoted records. The staleness
// decision and the demotion happen under one write lock, so a heartbeat
// cannot land between them.
func (s *Store) DemoteStale(threshold time.Duration) []StaleService {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().UTC().Add(-threshold)
	var demoted []StaleService
	for _, svc := range s.byID {
		if !svc.IsActive || !svc.LastHeartbeat.Before(cutoff) {
			continue
		}
		svc.IsActive = false
		demoted = append(demoted, StaleService{ID: svc.ID, Name: svc.Name})
		s.log.Warn("service demoted: heartbeat stale", logger.Fields(
			"name", svc.Name,
			"id", svc.ID,
			"last_heartbeat", svc.LastHeartbeat,
		))
	}
	return demoted
}

// lookupByName resolves a name through the byName index. Caller holds the lock.
func (s *Store) lookupByName(name string) (*Service, bool) {
	id, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	svc, ok := s.byID[id]
	return svc, ok
}
