package metrics

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Valores do rótulo "result".
const (
	ResultImported = "imported"
	ResultInvalid  = "invalid"
	ResultFailed   = "failed"
	ResultSuccess  = "success"
	ResultRejected = "rejected"
)

type importMetrics struct {
	rowsTotal    *prometheus.CounterVec
	batchesTotal *prometheus.CounterVec
	parseLatency *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *importMetrics {
	return &importMetrics{
		rowsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roizapp",
			Name:      "import_rows_total",
			Help:      "Total de linhas de clientes processadas na importação, por resultado.",
		}, []string{"result"}),
		batchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roizapp",
			Name:      "import_batches_total",
			Help:      "Total de lotes de importação enviados ao banco, por resultado.",
		}, []string{"result"}),
		parseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "roizapp",
			Name:      "import_parse_seconds",
			Help:      "Tempo de leitura e validação do arquivo CSV.",
			Buckets: []float64{
				0.001, 0.005, 0.01, 0.05,
				0.1, 0.5, 1, 5,
			},
		}, []string{"mode"}),
	}
})

func get() *importMetrics {
	return metricsSingleton()
}

// ObserveRows soma n linhas ao contador do resultado informado.
func ObserveRows(result string, n int) {
	if n <= 0 {
		return
	}
	get().rowsTotal.WithLabelValues(result).Add(float64(n))
}

// ObserveBatch conta um envio ao banco.
func ObserveBatch(result string) {
	get().batchesTotal.WithLabelValues(result).Inc()
}

// ObserveParse registra a duração do parse em segundos.
func ObserveParse(mode string, seconds float64) {
	get().parseLatency.WithLabelValues(mode).Observe(seconds)
}

// Register expõe o handler do Prometheus no caminho informado (padrão /metrics).
func Register(r *mux.Router, path string) {
	if path == "" {
		path = "/metrics"
	}
	r.Handle(path, promhttp.Handler()).Methods(http.MethodGet)
}
