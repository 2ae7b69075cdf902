/*
discount.go - Pricing and discount validation for billing topics

PURPOSE:
  Validates a partial update to a billing topic's pricing mode, discount
  type/value, and hour cap against the topic's currently persisted
  state, and normalizes it into a field set ready to persist.

RESOLUTION RULE:
  Discount type and value travel as a pair. When the caller supplies one
  half but not the other, the missing half is filled from the persisted
  topic before validation: a value-only update inherits the existing
  type, a type-only update inherits the existing value (which may be
  null). ResolveDiscount is a plain function over values so the merge is
  unit-testable without a store.

VALIDATION ORDER (first failure wins):
  1. discount value without a discount type (after resolution)
  2. discount value not strictly positive
  3. percentage discount above 100
  4. unknown discount type
  5. cap hours not strictly positive
  6. unknown pricing mode
  7. hourly rate / fixed fee not strictly positive

FIXED PRICING:
  When the resolved pricing mode is FIXED the persisted cap is forced to
  null regardless of what the caller supplied; fixed-fee billing has no
  hour cap concept.

SEE ALSO:
  - api/handlers.go: PATCH billing topic endpoint
  - store/sqlite: applies the normalized TopicUpdate
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT / OUTPUT SHAPES
// =============================================================================

// TopicPatch is a caller-supplied partial update. nil means "not
// supplied"; supplied fields replace the persisted ones after
// validation. Raw strings are carried for mode/type so unknown values
// reach the validator instead of failing at decode.
type TopicPatch struct {
	PricingMode   *string
	HourlyRate    *decimal.Decimal
	FixedFee      *decimal.Decimal
	CapHours      *decimal.Decimal
	DiscountType  *string
	DiscountValue *decimal.Decimal
}

func (p TopicPatch) touchesDiscount() bool {
	return p.DiscountType != nil || p.DiscountValue != nil
}

// TopicState is the slice of persisted topic state the validator needs.
type TopicState struct {
	PricingMode   PricingMode
	DiscountType  *DiscountType
	DiscountValue *decimal.Decimal
}

// DiscountFields is a resolved discount pair. Either half may be nil.
type DiscountFields struct {
	Type  *string
	Value *decimal.Decimal
}

// TopicUpdate is the normalized result of a validated patch. nil fields
// are left untouched by the store; SetDiscount / ClearCapHours carry
// the explicit set-to-null cases.
type TopicUpdate struct {
	PricingMode   *PricingMode
	HourlyRate    *decimal.Decimal
	FixedFee      *decimal.Decimal
	CapHours      *decimal.Decimal
	ClearCapHours bool
	SetDiscount   bool
	DiscountType  *DiscountType
	DiscountValue *decimal.Decimal
}

// =============================================================================
// RESOLUTION
// =============================================================================

// ResolveDiscount merges a partial discount update with the persisted
// pair. Untouched discounts resolve to the persisted pair unchanged.
func ResolveDiscount(patch TopicPatch, current TopicState) DiscountFields {
	resolved := DiscountFields{
		Value: current.DiscountValue,
	}
	if current.DiscountType != nil {
		s := string(*current.DiscountType)
		resolved.Type = &s
	}
	if patch.DiscountType != nil {
		resolved.Type = patch.DiscountType
	}
	if patch.DiscountValue != nil {
		resolved.Value = patch.DiscountValue
	}
	return resolved
}

// resolvedPricingMode is the mode the topic will have after the patch.
func resolvedPricingMode(patch TopicPatch, current TopicState) PricingMode {
	if patch.PricingMode != nil {
		return PricingMode(*patch.PricingMode)
	}
	return current.PricingMode
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateTopicPatch resolves and validates a partial topic update.
// On success it returns the normalized field set to persist; on failure
// a *ValidationError describing the first violated rule.
func ValidateTopicPatch(patch TopicPatch, current TopicState) (TopicUpdate, error) {
	discount := ResolveDiscount(patch, current)

	if patch.touchesDiscount() {
		if discount.Value != nil && discount.Type == nil {
			return TopicUpdate{}, invalid("discountValue", "a discount value requires a discount type")
		}
		if discount.Value != nil && !discount.Value.IsPositive() {
			return TopicUpdate{}, invalid("discountValue", "discount value must be a positive number")
		}
		if discount.Type != nil && DiscountType(*discount.Type) == DiscountPercentage &&
			discount.Value != nil && discount.Value.GreaterThan(decimal.NewFromInt(100)) {
			return TopicUpdate{}, invalid("discountValue", "a percentage discount cannot exceed 100")
		}
		if discount.Type != nil {
			switch DiscountType(*discount.Type) {
			case DiscountPercentage, DiscountAmount:
			default:
				return TopicUpdate{}, invalid("discountType", "discount type must be PERCENTAGE or AMOUNT")
			}
		}
	}

	if patch.CapHours != nil && !patch.CapHours.IsPositive() {
		return TopicUpdate{}, invalid("capHours", "cap hours must be a positive number")
	}

	if patch.PricingMode != nil {
		switch PricingMode(*patch.PricingMode) {
		case PricingHourly, PricingFixed:
		default:
			return TopicUpdate{}, invalid("pricingMode", "pricing mode must be HOURLY or FIXED")
		}
	}

	if patch.HourlyRate != nil && !patch.HourlyRate.IsPositive() {
		return TopicUpdate{}, invalid("hourlyRate", "hourly rate must be a positive number")
	}
	if patch.FixedFee != nil && !patch.FixedFee.IsPositive() {
		return TopicUpdate{}, invalid("fixedFee", "fixed fee must be a positive number")
	}

	update := TopicUpdate{
		HourlyRate: patch.HourlyRate,
		FixedFee:   patch.FixedFee,
		CapHours:   patch.CapHours,
	}
	if patch.PricingMode != nil {
		mode := PricingMode(*patch.PricingMode)
		update.PricingMode = &mode
	}
	if patch.touchesDiscount() {
		update.SetDiscount = true
		if discount.Type != nil {
			dt := DiscountType(*discount.Type)
			update.DiscountType = &dt
		}
		update.DiscountValue = discount.Value
	}

	// FIXED pricing has no hour cap concept: force the cap to null no
	// matter what the caller supplied.
	if resolvedPricingMode(patch, current) == PricingFixed {
		update.CapHours = nil
		update.ClearCapHours = true
	}

	return update, nil
}
