package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Exchange metrics
	Purchases        prometheus.Counter
	Sales            prometheus.Counter
	TicketsExchanged *prometheus.CounterVec
	ExchangeDuration *prometheus.HistogramVec
	ExchangeAmount   *prometheus.HistogramVec
	ExchangeFailures *prometheus.CounterVec
	Compensations    *prometheus.CounterVec

	// Tokenizer metrics
	TokensIssued   prometheus.Counter
	TokensResolved *prometheus.CounterVec

	// Account metrics
	AccountsOpened    prometheus.Counter
	Deposits          prometheus.Counter
	AccountOperations *prometheus.CounterVec

	// Inventory metrics
	InventoryAdjustments *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBErrors *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all Prometheus metrics and registers them with reg.
// A nil reg registers with the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		// Exchange metrics
		Purchases: f.NewCounter(prometheus.CounterOpts{
			Name: "goticket_purchases_total",
			Help: "Total number of completed purchases",
		}),
		Sales: f.NewCounter(prometheus.CounterOpts{
			Name: "goticket_sales_total",
			Help: "Total number of completed sales",
		}),
		TicketsExchanged: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goticket_tickets_exchanged_total",
				Help: "Tickets moved by completed exchanges",
			},
			[]string{"operation"},
		),
		ExchangeDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goticket_exchange_duration_seconds",
				Help:    "Duration of purchase and sale pipelines",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		ExchangeAmount: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goticket_exchange_amount",
				Help:    "Settled exchange amounts in major units",
				Buckets: []float64{1, 10, 50, 100, 500, 1000, 10000},
			},
			[]string{"operation"},
		),
		ExchangeFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goticket_exchange_failures_total",
				Help: "Failed exchanges by stage and error kind",
			},
			[]string{"operation", "stage", "kind"},
		),
		Compensations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goticket_compensations_total",
				Help: "Compensating actions by failed stage and result",
			},
			[]string{"operation", "stage", "result"},
		),

		// Tokenizer metrics
		TokensIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "goticket_tokens_issued_total",
			Help: "Total number of settlement tokens issued",
		}),
		TokensResolved: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goticket_tokens_resolved_total",
				Help: "Token resolutions by result",
			},
			[]string{"result"},
		),

		// Account metrics
		AccountsOpened: f.NewCounter(prometheus.CounterOpts{
			Name: "goticket_accounts_opened_total",
			Help: "Total number of accounts opened",
		}),
		Deposits: f.NewCounter(prometheus.CounterOpts{
			Name: "goticket_deposits_total",
			Help: "Total number of deposits",
		}),
		AccountOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goticket_account_operations_total",
				Help: "Total ledger operations by type",
			},
			[]string{"operation"},
		),

		// Inventory metrics
		InventoryAdjustments: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goticket_inventory_adjustments_total",
				Help: "Inventory adjustments by direction and result",
			},
			[]string{"direction", "result"},
		),

		// API metrics
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goticket_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goticket_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goticket_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goticket_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goticket_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goticket_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goticket_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
