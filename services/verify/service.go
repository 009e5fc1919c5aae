package verify

import (
	"context"
	"time"

	"github.com/kapostolos1/estia-app/pkg/errutil"
	"github.com/kapostolos1/estia-app/pkg/repository"
	"github.com/kapostolos1/estia-app/services/business"
	"github.com/kapostolos1/estia-app/services/subscription"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const providerGooglePlay = "google_play"

type Service struct {
	verifier  Verifier
	subs      *subscription.Repository
	resolver  *business.Resolver
	publisher subscription.ChangePublisher
	audit     repository.Repository[PlayPurchase]
	node      *snowflake.Node
}

func NewService(
	db *gorm.DB,
	verifier Verifier,
	subs *subscription.Repository,
	resolver *business.Resolver,
	publisher subscription.ChangePublisher,
	node *snowflake.Node,
) *Service {
	return &Service{
		verifier:  verifier,
		subs:      subs,
		resolver:  resolver,
		publisher: publisher,
		audit:     repository.ProvideStore[PlayPurchase](db),
		node:      node,
	}
}

// Verify checks a purchase token against Google and applies the verified
// expiry to the business's subscription. Only the owner may attach
// purchases; the paid period never moves backwards.
func (s *Service) Verify(ctx context.Context, userID string, req VerifyRequest) (*VerifyResult, error) {
	member, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if member.Role != business.RoleOwner {
		return nil, errutil.Forbidden("only the business owner can verify purchases", nil)
	}

	receipt, err := s.verifier.Verify(ctx, req.PurchaseToken)
	if err != nil {
		return nil, err
	}

	active := receipt.Active() && receipt.ExpiryTime != nil

	var expiry time.Time
	if receipt.ExpiryTime != nil {
		expiry = *receipt.ExpiryTime
	}

	updated, paidUntil, err := s.subs.ApplyPaidUntil(ctx, member.BusinessID, userID, expiry, providerGooglePlay, active)
	if err != nil {
		return nil, errutil.Internal("failed to apply verified purchase", err)
	}

	s.recordAudit(ctx, member.BusinessID, userID, req, receipt)

	if updated {
		if err := s.publisher.PublishChange(ctx, member.BusinessID); err != nil {
			zap.L().Warn("failed to publish subscription change",
				zap.String("business_id", member.BusinessID),
				zap.Error(err),
			)
		}
	}

	return &VerifyResult{
		Active:    receipt.Active(),
		Updated:   updated,
		PaidUntil: paidUntil,
		State:     receipt.State,
	}, nil
}

// recordAudit appends the verification attempt. Audit failures are logged,
// never surfaced; the purchase outcome does not depend on the trail.
func (s *Service) recordAudit(ctx context.Context, businessID, userID string, req VerifyRequest, receipt *Receipt) {
	productID := receipt.ProductID
	if productID == "" {
		productID = req.ProductID
	}

	row := &PlayPurchase{
		ID:            s.node.Generate().String(),
		BusinessID:    businessID,
		UserID:        userID,
		ProductID:     productID,
		PurchaseToken: req.PurchaseToken,
		State:         receipt.State,
		ExpiryTime:    receipt.ExpiryTime,
		CreatedAt:     time.Now(),
	}

	if err := s.audit.Create(ctx, row); err != nil {
		zap.L().Warn("failed to record play purchase audit row",
			zap.String("business_id", businessID),
			zap.Error(err),
		)
	}
}
