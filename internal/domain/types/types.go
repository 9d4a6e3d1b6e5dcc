// Package types contains common types used across the application
package types

import "github.com/okian/dscore/internal/domain/scoring"

// Row is the full score of one reference/system pair: DER followed by the
// frame-level metrics.
type Row struct {
	FileID      string  `json:"file_id"`
	DER         float64 `json:"der"`
	B3Precision float64 `json:"b3_precision"`
	B3Recall    float64 `json:"b3_recall"`
	B3F1        float64 `json:"b3_f1"`
	TauRefSys   float64 `json:"tau_ref_sys"`
	TauSysRef   float64 `json:"tau_sys_ref"`
	CE          float64 `json:"ce"`
	MI          float64 `json:"mi"`
	NMI         float64 `json:"nmi"`
}

// NewRow combines a DER value and frame-level scores.
func NewRow(fileID string, der float64, s scoring.Scores) Row {
	return Row{
		FileID:      fileID,
		DER:         der,
		B3Precision: s.BCubedPrecision,
		B3Recall:    s.BCubedRecall,
		B3F1:        s.BCubedF1,
		TauRefSys:   s.TauRefSys,
		TauSysRef:   s.TauSysRef,
		CE:          s.CE,
		MI:          s.MI,
		NMI:         s.NMI,
	}
}

// Columns returns the metric column names in output order.
func Columns() []string {
	return []string{"DER", "B3Precision", "B3Recall", "B3F1", "TauRefSys", "TauSysRef", "CE", "MI", "NMI"}
}

// Values returns the metrics in Columns order.
func (r Row) Values() []float64 {
	return []float64{r.DER, r.B3Precision, r.B3Recall, r.B3F1, r.TauRefSys, r.TauSysRef, r.CE, r.MI, r.NMI}
}

// Confusion is a labeled contingency table between reference and system
// frame classes of one recording.
type Confusion struct {
	RecordingID string      `json:"recording_id"`
	RefClasses  []string    `json:"ref_classes"`
	SysClasses  []string    `json:"sys_classes"`
	Counts      [][]float64 `json:"counts"`
	// Normalized is set when each row of Counts sums to one.
	Normalized bool `json:"normalized"`
}
