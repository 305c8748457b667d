package monitor

type MetricTag string

const (
	SuccessfulQueryDurationTag MetricTag = "successful_queries_duration"
	FailureQueryDurationTag    MetricTag = "failure_queries_duration"
	HTTPRequestDurationTag     MetricTag = "requests_duration_seconds"
	// Business counters:
	TenantsCreatedCounterTag         MetricTag = "tenants_created_counter"
	SchoolYearsCreatedCounterTag     MetricTag = "school_years_created_counter"
	AccessRequestsReviewedCounterTag MetricTag = "access_requests_reviewed_counter"
	LoginFailuresCounterTag          MetricTag = "login_failures_counter"
)

func (m MetricTag) ListAll() []MetricTag {
	return []MetricTag{
		SuccessfulQueryDurationTag,
		FailureQueryDurationTag,
		HTTPRequestDurationTag,
		TenantsCreatedCounterTag,
		SchoolYearsCreatedCounterTag,
		AccessRequestsReviewedCounterTag,
		LoginFailuresCounterTag,
	}
}
