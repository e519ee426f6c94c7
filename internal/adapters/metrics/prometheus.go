package metrics

import (
	"csv-drop/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements port.Metrics with prometheus counters
type Recorder struct {
	uploads       *prometheus.CounterVec
	compensations *prometheus.CounterVec
}

// NewRecorder registers the upload counters on reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csvdrop_uploads_total",
				Help: "Uploads that reached a terminal state, by outcome",
			},
			[]string{"outcome"},
		),
		compensations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csvdrop_compensations_total",
				Help: "Cleanup steps run after a failed or cancelled upload",
			},
			[]string{"step", "result"},
		),
	}
}

// UploadFinished counts one terminal upload
func (r *Recorder) UploadFinished(outcome domain.UploadOutcome) {
	r.uploads.WithLabelValues(string(outcome)).Inc()
}

// CompensationRan counts one cleanup step
func (r *Recorder) CompensationRan(step domain.CompensationKind, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.compensations.WithLabelValues(string(step), result).Inc()
}
