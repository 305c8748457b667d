package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

var SummaryVecMetrics = map[MetricTag]*prometheus.SummaryVec{
	HTTPRequestDurationTag: prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "smp", Subsystem: "http", Name: string(HTTPRequestDurationTag),
		Help: "HTTP requests durations, sliding window = 10m",
	},
		[]string{"status", "route", "method"},
	),
	SuccessfulQueryDurationTag: prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "smp", Subsystem: "db", Name: string(SuccessfulQueryDurationTag),
		Help: "Successful DB query durations",
	},
		[]string{"query_type"},
	),
	FailureQueryDurationTag: prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "smp", Subsystem: "db", Name: string(FailureQueryDurationTag),
		Help: "Failure DB query durations",
	},
		[]string{"query_type"},
	),
}

var CounterVecMetrics = map[MetricTag]*prometheus.CounterVec{
	TenantsCreatedCounterTag: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smp", Subsystem: "business", Name: string(TenantsCreatedCounterTag),
		Help: "A counter of created tenants by subscription plan",
	},
		[]string{"plan"},
	),
	SchoolYearsCreatedCounterTag: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smp", Subsystem: "business", Name: string(SchoolYearsCreatedCounterTag),
		Help: "A counter of created school years by tenant",
	},
		[]string{"tenant_id"},
	),
	AccessRequestsReviewedCounterTag: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smp", Subsystem: "business", Name: string(AccessRequestsReviewedCounterTag),
		Help: "A counter of reviewed access requests by outcome",
	},
		[]string{"outcome"},
	),
	LoginFailuresCounterTag: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smp", Subsystem: "auth", Name: string(LoginFailuresCounterTag),
		Help: "A counter of failed login attempts",
	},
		[]string{"reason"},
	),
}
