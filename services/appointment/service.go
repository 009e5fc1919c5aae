package appointment

import (
	"context"
	"time"

	"github.com/kapostolos1/estia-app/pkg/errutil"
	"github.com/kapostolos1/estia-app/pkg/repository"
	"github.com/kapostolos1/estia-app/services/access"
	"github.com/kapostolos1/estia-app/services/business"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const defaultDuration = 30 * time.Minute

const createBlockedText = "Your subscription has expired. Renew to keep adding new appointments."

// AccessGate answers whether a business may create new records right now.
type AccessGate interface {
	Acquire(ctx context.Context, businessID string) *access.Controller
}

type Service struct {
	repo     repository.Repository[Appointment]
	node     *snowflake.Node
	gate     AccessGate
	resolver *business.Resolver
}

func NewService(db *gorm.DB, node *snowflake.Node, gate *access.Manager, resolver *business.Resolver) *Service {
	return &Service{
		repo:     repository.ProvideStore[Appointment](db),
		node:     node,
		gate:     gate,
		resolver: resolver,
	}
}

// Create books an appointment for the caller's business. Creation is the
// only gated write: an expired business keeps read access but cannot add
// new appointments.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Appointment, error) {
	member, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := s.gate.Acquire(ctx, member.BusinessID).Decision()
	if !d.CanCreate {
		return nil, errutil.Forbidden(createBlockedText, nil)
	}

	endsAt := req.EndsAt
	if endsAt.IsZero() {
		endsAt = req.StartsAt.Add(defaultDuration)
	}
	if !endsAt.After(req.StartsAt) {
		return nil, errutil.BadRequest("appointment must end after it starts", nil)
	}

	now := time.Now()
	appt := &Appointment{
		ID:         s.node.Generate().String(),
		BusinessID: member.BusinessID,
		CreatedBy:  userID,
		Customer:   req.Customer,
		Phone:      req.Phone,
		Service:    req.Service,
		Notes:      req.Notes,
		StartsAt:   req.StartsAt,
		EndsAt:     endsAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, errutil.Internal("failed to create appointment", err)
	}
	return appt, nil
}

// List returns the business's appointments inside [from, to), newest-first
// when no range is given.
func (s *Service) List(ctx context.Context, userID string, from, to time.Time) ([]*Appointment, error) {
	member, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	opts := []repository.QueryOption{repository.OrderBy("starts_at DESC")}
	if !from.IsZero() {
		opts = append(opts, repository.Where("starts_at >= ?", from))
	}
	if !to.IsZero() {
		opts = append(opts, repository.Where("starts_at < ?", to))
	}

	rows, err := s.repo.Find(ctx, &Appointment{BusinessID: member.BusinessID}, opts...)
	if err != nil {
		return nil, errutil.Internal("failed to list appointments", err)
	}
	return rows, nil
}

// Cancel removes an appointment. Cancellation stays open in grace and
// expired states; only creation is gated.
func (s *Service) Cancel(ctx context.Context, userID, id string) error {
	member, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindOne(ctx, &Appointment{ID: id, BusinessID: member.BusinessID})
	if err != nil {
		return errutil.Internal("failed to read appointment", err)
	}
	if existing == nil {
		return errutil.NotFound("appointment not found", nil)
	}

	if err := s.repo.Delete(ctx, &Appointment{ID: id, BusinessID: member.BusinessID}); err != nil {
		return errutil.Internal("failed to cancel appointment", err)
	}
	return nil
}
