package billing

import (
	"context"

	"github.com/fieldops/backend/internal/domain/access"
	"github.com/fieldops/backend/internal/domain/finance"
	"github.com/fieldops/backend/internal/domain/partner"
	"github.com/fieldops/backend/internal/domain/sequence"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// kindPolicy fixes, per document kind, the numbering series, code prefix and
// the access checks guarding it.
type kindPolicy struct {
	series   string
	prefix   string
	resource access.Resource
	module   tenancy.ModuleKey
}

var kindPolicies = map[finance.DocumentKind]kindPolicy{
	finance.DocumentKindInvoice:   {sequence.SeriesInvoice, "INV", access.ResourceInvoice, tenancy.ModuleInvoicing},
	finance.DocumentKindJob:       {sequence.SeriesJob, "JOB", access.ResourceJob, tenancy.ModuleJobs},
	finance.DocumentKindTimesheet: {sequence.SeriesTimesheet, "TSH", access.ResourceTimesheet, tenancy.ModuleTimesheets},
}

// DocumentService handles invoices, jobs and timesheets. The target entity
// comes from the request path on every call and is intersected with the
// caller's resolved scope before any storage access.
type DocumentService struct {
	documents finance.DocumentRepository
	clients   partner.ClientRepository
	entities  tenancy.EntityRepository
	allocator *sequence.Allocator
	resolver  *access.Resolver
	gate      *access.Gate
	logger    *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	documents finance.DocumentRepository,
	clients partner.ClientRepository,
	entities tenancy.EntityRepository,
	allocator *sequence.Allocator,
	resolver *access.Resolver,
	gate *access.Gate,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		documents: documents,
		clients:   clients,
		entities:  entities,
		allocator: allocator,
		resolver:  resolver,
		gate:      gate,
		logger:    logger,
	}
}

// Create creates a document in the target entity. The counterparty tax
// status is snapshotted from the client at creation time, the tax rate
// defaults to the entity's setting, and the code comes from the kind's
// numbering series.
func (s *DocumentService) Create(ctx context.Context, identity access.Identity, entityID uuid.UUID, req CreateDocumentRequest) (*DocumentResponse, error) {
	kind := finance.DocumentKind(req.Kind)
	policy, ok := kindPolicies[kind]
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown document kind: "+req.Kind)
	}

	if err := s.authorize(ctx, identity, entityID, policy, access.ActionCreate); err != nil {
		return nil, err
	}

	client, err := s.clients.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if client.EntityID != entityID {
		// A client from another entity is out of scope even when the caller
		// could access that entity directly.
		return nil, shared.ErrScopeViolation
	}

	taxRate := decimal.Zero
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	} else {
		entity, err := s.entities.FindByID(ctx, entityID)
		if err != nil {
			return nil, err
		}
		taxRate = entity.Settings.DefaultTaxRate
	}

	discount, err := buildDiscount(req.DiscountType, req.DiscountValue)
	if err != nil {
		return nil, err
	}

	doc, err := finance.NewDocument(entityID, client.ID, kind, client.TaxStatus, taxRate, req.ReverseCharge, discount)
	if err != nil {
		return nil, err
	}
	for _, line := range req.Lines {
		if err := doc.AddLine(line.Description, line.Amount); err != nil {
			return nil, err
		}
	}

	code, err := s.allocator.NextNumber(ctx, entityID, policy.series, policy.prefix)
	if err != nil {
		return nil, err
	}
	if err := doc.AssignCode(code); err != nil {
		return nil, err
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("Document created",
		zap.String("entity_id", entityID.String()),
		zap.String("kind", string(kind)),
		zap.String("code", doc.Code),
	)

	resp := toDocumentResponse(doc)
	return &resp, nil
}

// Get retrieves a document, enforcing that its owning entity is within the
// caller's scope.
func (s *DocumentService) Get(ctx context.Context, identity access.Identity, id uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	policy := kindPolicies[doc.Kind]
	if err := s.authorize(ctx, identity, doc.EntityID, policy, access.ActionRead); err != nil {
		return nil, err
	}
	resp := toDocumentResponse(doc)
	return &resp, nil
}

// List retrieves the documents of one kind in the target entity
func (s *DocumentService) List(ctx context.Context, identity access.Identity, entityID uuid.UUID, kindName string) ([]DocumentResponse, error) {
	kind := finance.DocumentKind(kindName)
	policy, ok := kindPolicies[kind]
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown document kind: "+kindName)
	}
	if err := s.authorize(ctx, identity, entityID, policy, access.ActionRead); err != nil {
		return nil, err
	}

	docs, err := s.documents.FindByEntity(ctx, entityID, kind)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocumentResponse(d))
	}
	return out, nil
}

// Update edits a document's derivation inputs. All monetary fields are
// recomputed from scratch inside the aggregate; the issued code never
// changes.
func (s *DocumentService) Update(ctx context.Context, identity access.Identity, id uuid.UUID, req UpdateDocumentRequest) (*DocumentResponse, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	policy := kindPolicies[doc.Kind]
	if err := s.authorize(ctx, identity, doc.EntityID, policy, access.ActionUpdate); err != nil {
		return nil, err
	}

	if req.Lines != nil {
		existing := make([]uuid.UUID, 0, len(doc.Lines))
		for _, line := range doc.Lines {
			existing = append(existing, line.ID)
		}
		for _, lineID := range existing {
			if err := doc.RemoveLine(lineID); err != nil {
				return nil, err
			}
		}
		for _, line := range req.Lines {
			if err := doc.AddLine(line.Description, line.Amount); err != nil {
				return nil, err
			}
		}
	}
	if req.TaxStatus != nil {
		status, err := finance.ParseTaxStatus(*req.TaxStatus)
		if err != nil {
			return nil, err
		}
		if err := doc.SetTaxStatus(status); err != nil {
			return nil, err
		}
	}
	if req.ReverseCharge != nil {
		if err := doc.SetReverseCharge(*req.ReverseCharge); err != nil {
			return nil, err
		}
	}
	if req.DiscountType != nil {
		discount, err := buildDiscount(*req.DiscountType, req.DiscountValue)
		if err != nil {
			return nil, err
		}
		if err := doc.SetDiscount(discount); err != nil {
			return nil, err
		}
	}

	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, err
	}

	resp := toDocumentResponse(doc)
	return &resp, nil
}

// authorize runs the full pre-flight for an operation against one entity
func (s *DocumentService) authorize(ctx context.Context, identity access.Identity, entityID uuid.UUID, policy kindPolicy, action access.Action) error {
	ok, err := s.resolver.CanAccessEntity(ctx, identity, entityID)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("Scope violation on document operation",
			zap.String("user_id", identity.UserID.String()),
			zap.String("entity_id", entityID.String()),
			zap.String("resource", string(policy.resource)),
			zap.String("action", string(action)),
		)
		return shared.ErrScopeViolation
	}

	if !s.gate.Authorize(identity, policy.resource, action) {
		return shared.ErrAccessDenied
	}

	enabled, err := s.gate.AuthorizeModule(ctx, identity, entityID, policy.module)
	if err != nil {
		return err
	}
	if !enabled {
		return shared.ErrAccessDenied
	}
	return nil
}

func buildDiscount(discountType string, value *decimal.Decimal) (finance.DiscountSpec, error) {
	switch discountType {
	case "", "none":
		return finance.NoDiscount(), nil
	case "fixed":
		if value == nil {
			return finance.DiscountSpec{}, shared.NewDomainError("INVALID_DISCOUNT", "Discount value is required")
		}
		return finance.FixedDiscount(*value), nil
	case "percent":
		if value == nil {
			return finance.DiscountSpec{}, shared.NewDomainError("INVALID_DISCOUNT", "Discount value is required")
		}
		return finance.PercentDiscount(*value), nil
	default:
		return finance.DiscountSpec{}, shared.NewDomainError("INVALID_DISCOUNT", "Unknown discount type: "+discountType)
	}
}
