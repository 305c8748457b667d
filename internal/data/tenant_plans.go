package data

import (
	"fmt"
	"time"
)

type SubscriptionPlan string

const (
	StarterSubscriptionPlan    SubscriptionPlan = "STARTER"
	BasicSubscriptionPlan      SubscriptionPlan = "BASIC"
	StandardSubscriptionPlan   SubscriptionPlan = "STANDARD"
	PremiumSubscriptionPlan    SubscriptionPlan = "PREMIUM"
	EnterpriseSubscriptionPlan SubscriptionPlan = "ENTERPRISE"
)

func (p SubscriptionPlan) IsValid() bool {
	switch p {
	case StarterSubscriptionPlan, BasicSubscriptionPlan, StandardSubscriptionPlan, PremiumSubscriptionPlan, EnterpriseSubscriptionPlan:
		return true
	}
	return false
}

type BillingCycle string

const (
	MonthlyBillingCycle   BillingCycle = "MONTHLY"
	QuarterlyBillingCycle BillingCycle = "QUARTERLY"
	YearlyBillingCycle    BillingCycle = "YEARLY"
)

func (b BillingCycle) IsValid() bool {
	switch b {
	case MonthlyBillingCycle, QuarterlyBillingCycle, YearlyBillingCycle:
		return true
	}
	return false
}

// NextRenewalDate computes the subscription renewal date for a billing cycle, anchored at from.
func (b BillingCycle) NextRenewalDate(from time.Time) time.Time {
	switch b {
	case QuarterlyBillingCycle:
		return from.AddDate(0, 3, 0)
	case YearlyBillingCycle:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// PlanDefaults carries the plan-dependent values applied when a tenant is provisioned or
// changes subscription plan.
type PlanDefaults struct {
	TrialDays    int
	BasePrice    float64
	PerUserPrice float64
	MaxStudents  int
	MaxStaff     int
	MaxAdmins    int
	FeatureFlags map[string]bool
}

var planDefaults = map[SubscriptionPlan]PlanDefaults{
	StarterSubscriptionPlan: {
		TrialDays:    30,
		BasePrice:    0,
		PerUserPrice: 0,
		MaxStudents:  100,
		MaxStaff:     10,
		MaxAdmins:    2,
		FeatureFlags: map[string]bool{"attendance": true, "grading": false, "reports": false, "api_access": false},
	},
	BasicSubscriptionPlan: {
		TrialDays:    14,
		BasePrice:    49,
		PerUserPrice: 0.5,
		MaxStudents:  500,
		MaxStaff:     50,
		MaxAdmins:    5,
		FeatureFlags: map[string]bool{"attendance": true, "grading": true, "reports": false, "api_access": false},
	},
	StandardSubscriptionPlan: {
		TrialDays:    14,
		BasePrice:    149,
		PerUserPrice: 0.4,
		MaxStudents:  2000,
		MaxStaff:     200,
		MaxAdmins:    10,
		FeatureFlags: map[string]bool{"attendance": true, "grading": true, "reports": true, "api_access": false},
	},
	PremiumSubscriptionPlan: {
		TrialDays:    30,
		BasePrice:    399,
		PerUserPrice: 0.3,
		MaxStudents:  10000,
		MaxStaff:     1000,
		MaxAdmins:    25,
		FeatureFlags: map[string]bool{"attendance": true, "grading": true, "reports": true, "api_access": true},
	},
	EnterpriseSubscriptionPlan: {
		TrialDays:    60,
		BasePrice:    999,
		PerUserPrice: 0.2,
		MaxStudents:  100000,
		MaxStaff:     10000,
		MaxAdmins:    100,
		FeatureFlags: map[string]bool{"attendance": true, "grading": true, "reports": true, "api_access": true},
	},
}

// DefaultsForPlan returns the static defaults for the given subscription plan.
func DefaultsForPlan(plan SubscriptionPlan) (PlanDefaults, error) {
	defaults, ok := planDefaults[plan]
	if !ok {
		return PlanDefaults{}, fmt.Errorf("no defaults registered for subscription plan %q", plan)
	}
	return defaults, nil
}
