package application

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/errors"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/logging"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/tenant"
)

// ShiftService manages the tenant's cash-drawer shift lifecycle
type ShiftService struct {
	shifts domain.ShiftRepository
	logger *logging.Logger
}

// NewShiftService creates a new ShiftService
func NewShiftService(shifts domain.ShiftRepository, logger *logging.Logger) *ShiftService {
	return &ShiftService{
		shifts: shifts,
		logger: logger.WithComponent("shifts"),
	}
}

// OpenShift opens a new shift. The unique open-shift constraint makes a
// concurrent second open lose with a conflict.
func (s *ShiftService) OpenShift(ctx context.Context, cmd OpenShiftCommand) (*ShiftDTO, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	shift := domain.OpenShift("SHIFT-"+uuid.New().String()[:8], tenantCtx.TenantID, cmd.OpenedBy, cmd.StartCash)
	if err := s.shifts.Save(ctx, shift); err != nil {
		if stderrors.Is(err, domain.ErrShiftAlreadyOpen) {
			return nil, errors.ErrConflict("shift already open for tenant")
		}
		return nil, fmt.Errorf("failed to open shift: %w", err)
	}

	s.logger.WithContext(ctx).Info("shift opened",
		"shiftId", shift.ShiftID, "startCash", cmd.StartCash)
	return ToShiftDTO(shift), nil
}

// GetCurrentShift returns the open shift. Multiple open shifts are a
// data error: the most recent is returned and the violation surfaced.
func (s *ShiftService) GetCurrentShift(ctx context.Context) (*ShiftDTO, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	shift, err := s.shifts.FindOpen(ctx, tenantCtx.TenantID)
	if stderrors.Is(err, domain.ErrMultipleOpenShifts) {
		s.logger.WithContext(ctx).Error("multiple open shifts detected", "tenantId", tenantCtx.TenantID)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	if shift == nil {
		return nil, errors.ErrNotFound("open shift")
	}
	return ToShiftDTO(shift), nil
}

// CloseShift ends the open shift with the counted closing cash
func (s *ShiftService) CloseShift(ctx context.Context, cmd CloseShiftCommand) (*ShiftDTO, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	shift, err := s.shifts.Close(ctx, tenantCtx.TenantID, cmd.EndCash, cmd.ClosedBy)
	if err != nil {
		if stderrors.Is(err, domain.ErrNoOpenShift) {
			return nil, errors.ErrNotFound("open shift")
		}
		return nil, errors.MapDomainError(err)
	}

	s.logger.WithContext(ctx).Info("shift closed",
		"shiftId", shift.ShiftID,
		"endCash", cmd.EndCash,
		"expectedCash", shift.ExpectedCash(),
		"variance", shift.Variance(),
	)
	return ToShiftDTO(shift), nil
}

// RecordAdjustment appends a signed cash adjustment (kasbon, debt
// settlement, drawer correction) to the open shift
func (s *ShiftService) RecordAdjustment(ctx context.Context, cmd ShiftAdjustmentCommand) (*ShiftDTO, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	shift, err := s.shifts.RecordAdjustment(ctx, tenantCtx.TenantID, domain.ShiftAdjustment{
		Amount:      cmd.Amount,
		Description: cmd.Description,
		RecordedBy:  cmd.RecordedBy,
	})
	if err != nil {
		if stderrors.Is(err, domain.ErrNoOpenShift) {
			return nil, errors.ErrNotFound("open shift")
		}
		return nil, errors.MapDomainError(err)
	}

	s.logger.WithContext(ctx).Info("shift adjustment recorded",
		"shiftId", shift.ShiftID, "amount", cmd.Amount, "description", cmd.Description)
	return ToShiftDTO(shift), nil
}
