// Package risk scores transactions for review. Scores are advisory: they
// never block a transaction by themselves.
package risk

import (
	"context"
	"fmt"

	"nexapay/internal/models"

	"github.com/shopspring/decimal"
)

// Risk flags attached to a scored transaction.
const (
	FlagHighAmount     = "high_amount"
	FlagElevatedAmount = "elevated_amount"
	FlagCrossBorder    = "cross_border"
	FlagUnverified     = "sender_unverified"
	FlagKYCNotApproved = "kyc_not_approved"
	FlagHighVelocity   = "high_velocity"
)

const (
	KYCStatusApproved = "approved"

	maxScore = 100
)

// SenderProfile is what the scorer needs to know about a sender, supplied
// by an external verification/velocity provider.
type SenderProfile struct {
	Verified bool
	// KYCStatus is the provider's review outcome ("approved", "pending",
	// "rejected", ...).
	KYCStatus string
	// VelocityCount is the sender's transaction count in the provider's
	// trailing window.
	VelocityCount int
}

// ProfileProvider supplies sender verification state and transaction
// velocity.
type ProfileProvider interface {
	SenderProfile(ctx context.Context, walletID uint) (SenderProfile, error)
}

// Config holds scoring thresholds.
type Config struct {
	// VelocityThreshold is the trailing-window transaction count above
	// which the velocity factor fires.
	VelocityThreshold int
}

const DefaultVelocityThreshold = 10

var (
	highAmountThreshold     = decimal.NewFromInt(50000)
	elevatedAmountThreshold = decimal.NewFromInt(10000)
)

type Scorer struct {
	provider ProfileProvider
	config   Config
}

func NewScorer(provider ProfileProvider, config Config) *Scorer {
	if provider == nil {
		panic("profile provider is required")
	}
	if config.VelocityThreshold == 0 {
		config.VelocityThreshold = DefaultVelocityThreshold
	}
	return &Scorer{
		provider: provider,
		config:   config,
	}
}

// Score returns a bounded [0,100] risk score for the transaction plus the
// flags naming each factor that fired. Scoring is deterministic given the
// sender profile.
func (s *Scorer) Score(ctx context.Context, senderWalletID uint, amount decimal.Decimal, txType string) (int, []string, error) {
	profile, err := s.provider.SenderProfile(ctx, senderWalletID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to get sender profile: %w", err)
	}

	score := 0
	var flags []string

	switch {
	case amount.GreaterThan(highAmountThreshold):
		score += 30
		flags = append(flags, FlagHighAmount)
	case amount.GreaterThan(elevatedAmountThreshold):
		score += 15
		flags = append(flags, FlagElevatedAmount)
	}

	if txType == models.TypeCrossBorder {
		score += 20
		flags = append(flags, FlagCrossBorder)
	}

	if !profile.Verified {
		score += 15
		flags = append(flags, FlagUnverified)
	}

	if profile.KYCStatus != KYCStatusApproved {
		score += 20
		flags = append(flags, FlagKYCNotApproved)
	}

	if profile.VelocityCount > s.config.VelocityThreshold {
		score += 10
		flags = append(flags, FlagHighVelocity)
	}

	if score > maxScore {
		score = maxScore
	}
	return score, flags, nil
}
