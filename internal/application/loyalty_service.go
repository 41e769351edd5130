package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/logging"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/metrics"
)

// LoyaltyService resolves customers and accrues points on settlement.
// Resolution order: explicit customer ID, then phone, then case-insensitive
// exact name; an unmatched name creates a new regular-tier customer.
type LoyaltyService struct {
	customers domain.CustomerRepository
	config    domain.LoyaltyConfig
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// NewLoyaltyService creates a new LoyaltyService
func NewLoyaltyService(customers domain.CustomerRepository, config domain.LoyaltyConfig, logger *logging.Logger, m *metrics.Metrics) *LoyaltyService {
	return &LoyaltyService{
		customers: customers,
		config:    config,
		logger:    logger.WithComponent("loyalty"),
		metrics:   m,
	}
}

// AwardResult reports a completed point accrual
type AwardResult struct {
	CustomerID   string      `json:"customerId"`
	PointsEarned int64       `json:"pointsEarned"`
	TierApplied  domain.Tier `json:"tierApplied"`
	NewTier      domain.Tier `json:"newTier"`
}

// Award accrues points for a settled order. The multiplier comes from
// the tier the customer held before this order's total was added to
// their lifetime spend.
func (s *LoyaltyService) Award(ctx context.Context, tenantID, customerID, phone, name string, orderTotal float64, orderID string) (*AwardResult, error) {
	customer, err := s.resolve(ctx, tenantID, customerID, phone, name)
	if err != nil {
		return nil, err
	}

	earned, tierApplied := customer.AwardPoints(orderTotal, s.config)

	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}

	s.metrics.RecordLoyaltyPoints(string(tierApplied), earned)
	s.logger.WithContext(ctx).Info("loyalty points awarded",
		"customerId", customer.CustomerID,
		"orderId", orderID,
		"pointsEarned", earned,
		"tierApplied", tierApplied,
		"newTier", customer.Tier,
	)

	return &AwardResult{
		CustomerID:   customer.CustomerID,
		PointsEarned: earned,
		TierApplied:  tierApplied,
		NewTier:      customer.Tier,
	}, nil
}

// GetCustomer retrieves a customer by ID
func (s *LoyaltyService) GetCustomer(ctx context.Context, tenantID, customerID string) (*CustomerDTO, error) {
	customer, err := s.customers.FindByID(ctx, tenantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}
	return ToCustomerDTO(customer), nil
}

func (s *LoyaltyService) resolve(ctx context.Context, tenantID, customerID, phone, name string) (*domain.Customer, error) {
	if customerID != "" {
		customer, err := s.customers.FindByID(ctx, tenantID, customerID)
		if err != nil {
			return nil, fmt.Errorf("failed to find customer by id: %w", err)
		}
		if customer != nil {
			return customer, nil
		}
	}

	if phone != "" {
		customer, err := s.customers.FindByPhone(ctx, tenantID, phone)
		if err != nil {
			return nil, fmt.Errorf("failed to find customer by phone: %w", err)
		}
		if customer != nil {
			return customer, nil
		}
	}

	if name != "" {
		customer, err := s.customers.FindByName(ctx, tenantID, name)
		if err != nil {
			return nil, fmt.Errorf("failed to find customer by name: %w", err)
		}
		if customer != nil {
			return customer, nil
		}
	}

	if name == "" {
		return nil, domain.ErrCustomerNoName
	}

	customer, err := domain.NewCustomer("CUST-"+uuid.New().String()[:8], tenantID, name, phone)
	if err != nil {
		return nil, err
	}
	if err := s.customers.Save(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.WithContext(ctx).Info("customer created", "customerId", customer.CustomerID, "name", name)
	return customer, nil
}
