package partner

import (
	"context"

	"github.com/fieldops/backend/internal/domain/access"
	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/fieldops/backend/internal/domain/partner"
	"github.com/fieldops/backend/internal/domain/sequence"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	csvimport "github.com/fieldops/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientService handles client operations. Every operation re-checks the
// caller's entity scope and role before touching storage; the target entity
// always comes from the request, never from the session.
type ClientService struct {
	clients   partner.ClientRepository
	allocator *sequence.Allocator
	resolver  *access.Resolver
	gate      *access.Gate
	logger    *zap.Logger
}

// NewClientService creates a new client service
func NewClientService(
	clients partner.ClientRepository,
	allocator *sequence.Allocator,
	resolver *access.Resolver,
	gate *access.Gate,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{
		clients:   clients,
		allocator: allocator,
		resolver:  resolver,
		gate:      gate,
		logger:    logger,
	}
}

// Create creates a client in the target entity, allocating its reference
// code. A caller-supplied code is honored verbatim if free; otherwise one is
// derived from the client and company names.
func (s *ClientService) Create(ctx context.Context, identity access.Identity, entityID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	if err := s.authorize(ctx, identity, entityID, access.ActionCreate); err != nil {
		return nil, err
	}

	status, err := finance.ParseTaxStatus(req.TaxStatus)
	if err != nil {
		return nil, err
	}

	client, err := partner.NewClient(entityID, req.Name, req.CompanyName, status)
	if err != nil {
		return nil, err
	}
	if req.Email != "" {
		if err := client.SetEmail(req.Email); err != nil {
			return nil, err
		}
	}

	refCode, err := s.allocator.AllocateRefCode(ctx, entityID, sequence.SeriesClientRef, client.Name, client.CompanyName, req.RefCode)
	if err != nil {
		return nil, err
	}
	if err := client.AssignRefCode(refCode); err != nil {
		return nil, err
	}

	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info("Client created",
		zap.String("entity_id", entityID.String()),
		zap.String("ref_code", client.RefCode),
	)

	resp := toClientResponse(client)
	return &resp, nil
}

// Import bulk-creates clients from an uploaded CSV payload. The whole file
// is validated first; a file with any invalid row is rejected with the full
// error list and nothing is created. Ref codes behave as in Create: an
// explicit code is honored if free, otherwise one is derived per row.
func (s *ClientService) Import(ctx context.Context, identity access.Identity, entityID uuid.UUID, data []byte) (*ImportClientsResponse, error) {
	if err := s.authorize(ctx, identity, entityID, access.ActionCreate); err != nil {
		return nil, err
	}

	result, err := csvimport.ParseClientRows(data)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_IMPORT_FILE", err.Error())
	}
	if !result.IsClean() {
		return &ImportClientsResponse{
			TotalRows: result.TotalRows,
			Errors:    result.Errors,
		}, nil
	}

	// Codes are allocated before the rows exist in storage, so the probe
	// must also see the codes already claimed by this file
	reserved := make(map[string]bool, len(result.Rows))
	allocator := s.allocator.WithReserved(reserved)

	clients := make([]*partner.Client, 0, len(result.Rows))
	for _, row := range result.Rows {
		client, err := partner.NewClient(entityID, row.Name, row.CompanyName, row.TaxStatus)
		if err != nil {
			return nil, err
		}
		if row.Email != "" {
			if err := client.SetEmail(row.Email); err != nil {
				return nil, err
			}
		}

		refCode, err := allocator.AllocateRefCode(ctx, entityID, sequence.SeriesClientRef, client.Name, client.CompanyName, row.RefCode)
		if err != nil {
			return nil, err
		}
		if err := client.AssignRefCode(refCode); err != nil {
			return nil, err
		}
		reserved[refCode] = true
		clients = append(clients, client)
	}

	// One transaction for the whole file, so a failure mid-way leaves no
	// partial import behind
	if err := s.clients.CreateBatch(ctx, clients); err != nil {
		return nil, err
	}

	resp := &ImportClientsResponse{TotalRows: result.TotalRows}
	for _, client := range clients {
		resp.Imported++
		resp.Clients = append(resp.Clients, toClientResponse(client))
	}

	s.logger.Info("Clients imported",
		zap.String("entity_id", entityID.String()),
		zap.Int("imported", resp.Imported),
	)

	return resp, nil
}

// Get retrieves a client, enforcing that its owning entity is within the
// caller's scope.
func (s *ClientService) Get(ctx context.Context, identity access.Identity, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, identity, client.EntityID, access.ActionRead); err != nil {
		return nil, err
	}
	resp := toClientResponse(client)
	return &resp, nil
}

// List retrieves the clients of the target entity
func (s *ClientService) List(ctx context.Context, identity access.Identity, entityID uuid.UUID) ([]ClientResponse, error) {
	if err := s.authorize(ctx, identity, entityID, access.ActionRead); err != nil {
		return nil, err
	}
	clients, err := s.clients.FindByEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	out := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	return out, nil
}

// Update applies partial changes to a client. The reference code is never
// touched, whatever the request carries.
func (s *ClientService) Update(ctx context.Context, identity access.Identity, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, identity, client.EntityID, access.ActionUpdate); err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := client.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		if err := client.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.TaxStatus != nil {
		status, err := finance.ParseTaxStatus(*req.TaxStatus)
		if err != nil {
			return nil, err
		}
		if err := client.SetTaxStatus(status); err != nil {
			return nil, err
		}
	}

	if err := s.clients.Update(ctx, client); err != nil {
		return nil, err
	}

	resp := toClientResponse(client)
	return &resp, nil
}

// Deactivate marks a client inactive
func (s *ClientService) Deactivate(ctx context.Context, identity access.Identity, id uuid.UUID) error {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, identity, client.EntityID, access.ActionUpdate); err != nil {
		return err
	}

	client.Deactivate()
	return s.clients.Update(ctx, client)
}

// authorize runs the full pre-flight for an operation: scope intersection
// first, then role policy, then the entity's module flag.
func (s *ClientService) authorize(ctx context.Context, identity access.Identity, entityID uuid.UUID, action access.Action) error {
	ok, err := s.resolver.CanAccessEntity(ctx, identity, entityID)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("Scope violation on client operation",
			zap.String("user_id", identity.UserID.String()),
			zap.String("entity_id", entityID.String()),
			zap.String("action", string(action)),
		)
		return shared.ErrScopeViolation
	}

	if !s.gate.Authorize(identity, access.ResourceClient, action) {
		return shared.ErrAccessDenied
	}

	enabled, err := s.gate.AuthorizeModule(ctx, identity, entityID, tenancy.ModuleClients)
	if err != nil {
		return err
	}
	if !enabled {
		return shared.ErrAccessDenied
	}
	return nil
}
