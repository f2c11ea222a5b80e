package domain

type EstimationAlgorithm string

const (
	EstimationSimple     EstimationAlgorithm = "simple"
	EstimationHistorical EstimationAlgorithm = "historical"
	EstimationMLBased    EstimationAlgorithm = "ml_based"
)

func (a EstimationAlgorithm) Valid() bool {
	switch a {
	case EstimationSimple, EstimationHistorical, EstimationMLBased:
		return true
	}
	return false
}

// QueueConfiguration holds the process-wide queue settings. Only the
// "simple" estimation algorithm has an implementation; the other
// selectors are accepted and stored but fall through to simple.
type QueueConfiguration struct {
	MaxQueueLength      int                 `json:"max_queue_length"`
	PriorityEnabled     bool                `json:"priority_enabled"`
	AutoProgressEnabled bool                `json:"auto_progress_enabled"`
	EstimationAlgorithm EstimationAlgorithm `json:"estimation_algorithm"`
}

func DefaultQueueConfiguration() *QueueConfiguration {
	return &QueueConfiguration{
		MaxQueueLength:      50,
		PriorityEnabled:     true,
		AutoProgressEnabled: true,
		EstimationAlgorithm: EstimationSimple,
	}
}
