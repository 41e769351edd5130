package domain

import (
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors for Customer aggregate
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerNoName   = errors.New("customer must have a name")
)

// Tier represents the loyalty tier derived from lifetime spend
type Tier string

const (
	TierRegular Tier = "regular"
	TierSilver  Tier = "silver"
	TierGold    Tier = "gold"
)

// LoyaltyConfig holds the configurable tier thresholds and the point
// ratio (currency units per base point).
type LoyaltyConfig struct {
	SilverThreshold float64
	GoldThreshold   float64
	PointRatio      float64
}

// DefaultLoyaltyConfig returns the standard thresholds and ratio
func DefaultLoyaltyConfig() LoyaltyConfig {
	return LoyaltyConfig{
		SilverThreshold: 500_000,
		GoldThreshold:   2_000_000,
		PointRatio:      10_000,
	}
}

// TierFor returns the tier a lifetime spend qualifies for
func (c LoyaltyConfig) TierFor(totalSpent float64) Tier {
	switch {
	case totalSpent >= c.GoldThreshold:
		return TierGold
	case totalSpent >= c.SilverThreshold:
		return TierSilver
	default:
		return TierRegular
	}
}

// Multiplier returns the point multiplier for a tier
func (t Tier) Multiplier() float64 {
	switch t {
	case TierGold:
		return 1.5
	case TierSilver:
		return 1.25
	default:
		return 1.0
	}
}

// Customer is the loyalty aggregate. Points accrue on order settlement
// using the tier held before the order's total is added to TotalSpent.
type Customer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID    string             `bson:"customerId" json:"customerId"`
	TenantID      string             `bson:"tenantId" json:"tenantId"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Name          string             `bson:"name" json:"name"`
	TotalSpent    float64            `bson:"totalSpent" json:"totalSpent"`
	VisitCount    int64              `bson:"visitCount" json:"visitCount"`
	Points        int64              `bson:"points" json:"points"`
	Tier          Tier               `bson:"tier" json:"tier"`
	LastOrderDate *time.Time         `bson:"lastOrderDate,omitempty" json:"lastOrderDate,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewCustomer creates a new customer starting at the regular tier
func NewCustomer(customerID, tenantID, name, phone string) (*Customer, error) {
	if name == "" {
		return nil, ErrCustomerNoName
	}

	now := time.Now().UTC()
	return &Customer{
		ID:         primitive.NewObjectID(),
		CustomerID: customerID,
		TenantID:   tenantID,
		Name:       name,
		Phone:      phone,
		Tier:       TierRegular,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// AwardPoints accrues points for a settled order. pointsEarned =
// floor(floor(total/pointRatio) * multiplier), with the multiplier taken
// from the tier held BEFORE this order's total is added to lifetime
// spend. The tier is then recomputed for future orders.
func (c *Customer) AwardPoints(orderTotal float64, cfg LoyaltyConfig) (pointsEarned int64, tierApplied Tier) {
	tierApplied = cfg.TierFor(c.TotalSpent)

	basePoints := math.Floor(orderTotal / cfg.PointRatio)
	pointsEarned = int64(math.Floor(basePoints * tierApplied.Multiplier()))

	now := time.Now().UTC()
	c.TotalSpent += orderTotal
	c.VisitCount++
	c.Points += pointsEarned
	c.Tier = cfg.TierFor(c.TotalSpent)
	c.LastOrderDate = &now
	c.UpdatedAt = now

	return pointsEarned, tierApplied
}
