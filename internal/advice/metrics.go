package advice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK    = "ok"
	outcomeEmpty = "empty"
	outcomeError = "error"
)

var adviceRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "advice_requests_total",
		Help: "Calls to the advice model by outcome",
	},
	[]string{"outcome"},
)

func recordRequest(outcome string) {
	adviceRequestsTotal.WithLabelValues(outcome).Inc()
}
