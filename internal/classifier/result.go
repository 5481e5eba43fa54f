package classifier

import "time"

// Result is the outcome of classifying one image. A non-empty Error marks an
// error-shaped result: only ID, ImagePath, Error and Timestamp are set.
type Result struct {
	ID            string             `json:"id" yaml:"id"`
	ImagePath     string             `json:"image_path" yaml:"image_path"`
	Condition     string             `json:"condition,omitempty" yaml:"condition,omitempty"`
	ClassIndex    int                `json:"class_index" yaml:"class_index"`
	Confidence    float64            `json:"confidence" yaml:"confidence"`
	ConfidencePct string             `json:"confidence_pct,omitempty" yaml:"confidence_pct,omitempty"`
	Probabilities map[string]float64 `json:"all_probabilities,omitempty" yaml:"all_probabilities,omitempty"`
	AlertRequired bool               `json:"alert_required" yaml:"alert_required"`
	IsCritical    bool               `json:"is_critical" yaml:"is_critical"`
	Description   string             `json:"description,omitempty" yaml:"description,omitempty"`
	Action        string             `json:"recommended_action,omitempty" yaml:"recommended_action,omitempty"`
	Timestamp     time.Time          `json:"timestamp" yaml:"timestamp"`
	Error         string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether r is an error-shaped result.
func (r Result) Failed() bool {
	return r.Error != ""
}
