package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RegistrationsTotal = newResultCounter("accounts_registrations_total", "Total number of account creation attempts.")
	LoginsTotal        = newResultCounter("accounts_logins_total", "Total number of login attempts.")
	VerificationsTotal = newResultCounter("accounts_email_verifications_total", "Total number of email verification attempts.")
	ProfileUpdates     = newResultCounter("accounts_profile_updates_total", "Total number of profile edit attempts.")
	DeletionsTotal     = newResultCounter("accounts_deletions_total", "Total number of account deletion attempts.")
	NotificationsTotal = newResultCounter("accounts_notifications_total", "Total number of verification emails dispatched.")

	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_tokens_issued_total",
			Help: "Total number of access tokens signed.",
		},
		[]string{"alg", "result"},
	)
)

func newResultCounter(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, []string{"result"})
}

// Result maps an error onto the result label.
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

// MustRegister registers every collector with reg (the default registerer
// when nil), stamping a constant service label on each series.
func MustRegister(reg prometheus.Registerer, serviceName string) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, reg).MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		RegistrationsTotal,
		LoginsTotal,
		VerificationsTotal,
		ProfileUpdates,
		DeletionsTotal,
		NotificationsTotal,
		TokensIssuedTotal,
	)
}
