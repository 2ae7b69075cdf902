package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexhours/billing-engine/billing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func strPtr(s string) *string { return &s }

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func decPtr(f float64) *decimal.Decimal { return billing.DecimalPtr(dec(f)) }

func hourlyState() billing.TopicState {
	return billing.TopicState{PricingMode: billing.PricingHourly}
}

// =============================================================================
// RESOLUTION
// =============================================================================

func TestResolveDiscount_ValueOnlyInheritsPersistedType(t *testing.T) {
	// GIVEN: A topic with a persisted PERCENTAGE discount
	// WHEN: The caller updates only the value
	// THEN: The resolved pair keeps the persisted type

	persisted := billing.DiscountPercentage
	resolved := billing.ResolveDiscount(
		billing.TopicPatch{DiscountValue: decPtr(10)},
		billing.TopicState{PricingMode: billing.PricingHourly, DiscountType: &persisted},
	)

	require.NotNil(t, resolved.Type)
	assert.Equal(t, "PERCENTAGE", *resolved.Type)
	require.NotNil(t, resolved.Value)
	assert.True(t, resolved.Value.Equal(dec(10)))
}

func TestResolveDiscount_TypeOnlyInheritsPersistedValue(t *testing.T) {
	resolved := billing.ResolveDiscount(
		billing.TopicPatch{DiscountType: strPtr("AMOUNT")},
		billing.TopicState{PricingMode: billing.PricingHourly, DiscountValue: decPtr(500)},
	)

	require.NotNil(t, resolved.Type)
	assert.Equal(t, "AMOUNT", *resolved.Type)
	require.NotNil(t, resolved.Value)
	assert.True(t, resolved.Value.Equal(dec(500)))
}

func TestResolveDiscount_TypeOnlyWithNullPersistedValue(t *testing.T) {
	// A type-only update inherits the existing value even when it is null.
	resolved := billing.ResolveDiscount(
		billing.TopicPatch{DiscountType: strPtr("PERCENTAGE")},
		hourlyState(),
	)

	require.NotNil(t, resolved.Type)
	assert.Nil(t, resolved.Value)
}

// =============================================================================
// VALIDATION RULES
// =============================================================================

func TestValidateTopicPatch_ValueWithoutTypeRejected(t *testing.T) {
	// GIVEN: No persisted discount type
	// WHEN: The caller supplies only a discount value
	// THEN: The patch is rejected

	_, err := billing.ValidateTopicPatch(
		billing.TopicPatch{DiscountValue: decPtr(10)},
		hourlyState(),
	)

	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "discountValue", verr.Field)
}

func TestValidateTopicPatch_ValueMergedAgainstPersistedTypeAccepted(t *testing.T) {
	persisted := billing.DiscountPercentage
	update, err := billing.ValidateTopicPatch(
		billing.TopicPatch{DiscountValue: decPtr(10)},
		billing.TopicState{PricingMode: billing.PricingHourly, DiscountType: &persisted},
	)

	require.NoError(t, err)
	assert.True(t, update.SetDiscount)
	require.NotNil(t, update.DiscountType)
	assert.Equal(t, billing.DiscountPercentage, *update.DiscountType)
	require.NotNil(t, update.DiscountValue)
	assert.True(t, update.DiscountValue.Equal(dec(10)))
}

func TestValidateTopicPatch_NonPositiveValueRejected(t *testing.T) {
	for _, v := range []float64{0, -5} {
		_, err := billing.ValidateTopicPatch(
			billing.TopicPatch{DiscountType: strPtr("AMOUNT"), DiscountValue: decPtr(v)},
			hourlyState(),
		)
		assert.Error(t, err, "value %v should be rejected", v)
	}
}

func TestValidateTopicPatch_PercentageAbove100AlwaysRejected(t *testing.T) {
	// Rejected with the pair supplied outright...
	_, err := billing.ValidateTopicPatch(
		billing.TopicPatch{DiscountType: strPtr("PERCENTAGE"), DiscountValue: decPtr(150)},
		hourlyState(),
	)
	assert.Error(t, err)

	// ...and when the type is inherited from persisted state.
	persisted := billing.DiscountPercentage
	_, err = billing.ValidateTopicPatch(
		billing.TopicPatch{DiscountValue: decPtr(150)},
		billing.TopicState{PricingMode: billing.PricingHourly, DiscountType: &persisted},
	)
	assert.Error(t, err)
}

func TestValidateTopicPatch_Boundary100Accepted(t *testing.T) {
	_, err := billing.ValidateTopicPatch(
		billing.TopicPatch{DiscountType: strPtr("PERCENTAGE"), DiscountValue: decPtr(100)},
		hourlyState(),
	)
	assert.NoError(t, err)
}

func TestValidateTopicPatch_UnknownDiscountTypeRejected(t *testing.T) {
	_, err := billing.ValidateTopicPatch(
		billing.TopicPatch{DiscountType: strPtr("COUPON"), DiscountValue: decPtr(10)},
		hourlyState(),
	)

	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "discountType", verr.Field)
}

func TestValidateTopicPatch_NonPositiveCapRejected(t *testing.T) {
	_, err := billing.ValidateTopicPatch(
		billing.TopicPatch{CapHours: decPtr(0)},
		hourlyState(),
	)
	assert.Error(t, err)
}

func TestValidateTopicPatch_UnknownPricingModeRejected(t *testing.T) {
	_, err := billing.ValidateTopicPatch(
		billing.TopicPatch{PricingMode: strPtr("RETAINER")},
		hourlyState(),
	)

	var verr *billing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pricingMode", verr.Field)
}

// =============================================================================
// FIXED-MODE CAP CLEARING
// =============================================================================

func TestValidateTopicPatch_FixedModeForcesCapNull(t *testing.T) {
	// GIVEN: A patch switching to FIXED and supplying a cap
	// WHEN: Validated
	// THEN: The normalized update clears the cap; the supplied 50 never persists

	update, err := billing.ValidateTopicPatch(
		billing.TopicPatch{PricingMode: strPtr("FIXED"), CapHours: decPtr(50)},
		hourlyState(),
	)

	require.NoError(t, err)
	assert.True(t, update.ClearCapHours)
	assert.Nil(t, update.CapHours)
}

func TestValidateTopicPatch_PersistedFixedModeClearsSuppliedCap(t *testing.T) {
	// The resolved mode comes from persisted state when the patch is silent.
	update, err := billing.ValidateTopicPatch(
		billing.TopicPatch{CapHours: decPtr(20)},
		billing.TopicState{PricingMode: billing.PricingFixed},
	)

	require.NoError(t, err)
	assert.True(t, update.ClearCapHours)
	assert.Nil(t, update.CapHours)
}

func TestValidateTopicPatch_HourlyModeKeepsCap(t *testing.T) {
	update, err := billing.ValidateTopicPatch(
		billing.TopicPatch{CapHours: decPtr(20)},
		hourlyState(),
	)

	require.NoError(t, err)
	assert.False(t, update.ClearCapHours)
	require.NotNil(t, update.CapHours)
	assert.True(t, update.CapHours.Equal(dec(20)))
}

func TestValidateTopicPatch_UntouchedDiscountStaysUnset(t *testing.T) {
	update, err := billing.ValidateTopicPatch(
		billing.TopicPatch{HourlyRate: decPtr(300)},
		hourlyState(),
	)

	require.NoError(t, err)
	assert.False(t, update.SetDiscount)
	require.NotNil(t, update.HourlyRate)
	assert.True(t, update.HourlyRate.Equal(dec(300)))
}
