// Package scoring computes the agreement between a reference and a system
// labeling from their contingency matrix: B-cubed precision/recall/F1,
// Goodman-Kruskal tau in both directions, conditional entropy, and mutual
// information.
//
// Every function reads only the matrix, so a batch caller builds it once and
// passes it to each metric. Sums run over non-zero cells in row-major order.
package scoring

import (
	"cmp"
	"math"

	"github.com/okian/dscore/internal/domain/contingency"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// eps is the float64 machine epsilon. It is added to the denominators of tau
// and NMI so that single-class marginals yield a finite value instead of 0/0.
var eps = math.Nextafter(1, 2) - 1

// Scores holds every frame-level metric for one reference/system pair.
type Scores struct {
	BCubedPrecision float64
	BCubedRecall    float64
	BCubedF1        float64
	TauRefSys       float64
	TauSysRef       float64
	CE              float64 // H(ref|sys)
	MI              float64
	NMI             float64
}

// Compute returns every metric for cm.
func Compute(cm *contingency.Matrix, opts ...Option) Scores {
	var s Scores
	s.BCubedPrecision, s.BCubedRecall, s.BCubedF1 = BCubed(cm)
	s.TauRefSys, s.TauSysRef = GoodmanKruskalTau(cm)
	s.CE = ConditionalEntropy(cm, opts...)
	s.MI, s.NMI = MutualInformation(cm, opts...)
	return s
}

// FromLabels builds the contingency matrix for ref and sys and returns every
// metric.
func FromLabels[L cmp.Ordered](ref, sys []L, opts ...Option) (Scores, error) {
	cm, err := MatrixFor(ref, sys, nil)
	if err != nil {
		return Scores{}, err
	}
	return Compute(cm, opts...), nil
}

// MatrixFor returns cm when it is non-nil, ignoring the labels. Otherwise it
// builds the matrix from ref and sys. It is the entry point for computing a
// single metric from frame labels:
//
//	cm, err := MatrixFor(ref, sys, nil)
//	p, r, f1 := BCubed(cm)
func MatrixFor[L cmp.Ordered](ref, sys []L, cm *contingency.Matrix) (*contingency.Matrix, error) {
	if cm != nil {
		return cm, nil
	}
	tab, err := contingency.Build(ref, sys)
	if err != nil {
		return nil, err
	}
	return tab.Matrix, nil
}

// BCubed returns B-cubed precision, recall and F1 (Bagga and Baldwin, 1998).
//
// The precision of a frame is the fraction of frames sharing its system class
// that also share its reference class; recall swaps the roles. Both are
// averaged over frames.
//
// Raw frame labels are turned into cm with MatrixFor.
func BCubed(cm *contingency.Matrix) (precision, recall, f1 float64) {
	n := cm.Total()
	rows, cols := cm.RowSums(), cm.ColSums()
	cm.NonZero(func(i, j int, v float64) {
		precision += v / n * (v / cols[j])
		recall += v / n * (v / rows[i])
	})
	f1 = 2 * (precision * recall) / (precision + recall)
	return precision, recall, f1
}

// GoodmanKruskalTau returns tau(ref, sys), how well the reference class
// predicts the system class, and tau(sys, ref), the reverse. Both lie in
// [0, 1]. When the predicted side has a single class both its variance and
// its conditional variance are zero: predicting it scores 1, and predicting
// from it scores eps/V, which is 0 in the limit.
//
// Raw frame labels are turned into cm with MatrixFor.
func GoodmanKruskalTau(cm *contingency.Matrix) (refSys, sysRef float64) {
	n := cm.Total()
	rows, cols := cm.RowSums(), cm.ColSums()
	floats.Scale(1/n, rows)
	floats.Scale(1/n, cols)

	rowSq := make([]float64, len(rows))
	colSq := make([]float64, len(cols))
	cm.NonZero(func(i, j int, v float64) {
		p := v / n
		rowSq[i] += p * p
		colSq[j] += p * p
	})

	vy := 1 - floats.Dot(cols, cols) + eps
	vyGivenX := 1 - ratioSum(rowSq, rows)
	if classCount(cols) == 1 {
		vyGivenX = 0
	}
	refSys = (vy - vyGivenX) / vy

	vx := 1 - floats.Dot(rows, rows) + eps
	vxGivenY := 1 - ratioSum(colSq, cols)
	if classCount(rows) == 1 {
		vxGivenY = 0
	}
	sysRef = (vx - vxGivenY) / vx

	return refSys, sysRef
}

// classCount returns the number of classes with a non-zero marginal.
func classCount(marginals []float64) int {
	n := 0
	for _, m := range marginals {
		if m > 0 {
			n++
		}
	}
	return n
}

// ratioSum returns the sum of num[i]/den[i] over classes with den[i] > 0.
func ratioSum(num, den []float64) float64 {
	var s float64
	for i, d := range den {
		if d > 0 {
			s += num[i] / d
		}
	}
	return s
}

// ConditionalEntropy returns H(ref|sys), in bits unless Nats is requested.
// Raw frame labels are turned into cm with MatrixFor.
func ConditionalEntropy(cm *contingency.Matrix, opts ...Option) float64 {
	log := newOptions(opts).unit.log
	n := cm.Total()
	cols := cm.ColSums()
	nSys := floats.Sum(cols)

	var h float64
	cm.NonZero(func(_, j int, v float64) {
		h += v / n * (log(cols[j]) - log(v) + log(n) - log(nSys))
	})
	return h
}

// MutualInformation returns the mutual information between the reference and
// system labelings and its normalization by the geometric mean of the two
// marginal entropies. A labeling with a single class shares no information
// with the other, so both values are exactly 0 in that case.
//
// Raw frame labels are turned into cm with MatrixFor.
func MutualInformation(cm *contingency.Matrix, opts ...Option) (mi, nmi float64) {
	unit := newOptions(opts).unit
	log := unit.log
	n := cm.Total()
	rows, cols := cm.RowSums(), cm.ColSums()
	if classCount(rows) == 1 || classCount(cols) == 1 {
		return 0, 0
	}

	cm.NonZero(func(i, j int, v float64) {
		mi += v / n * (log(v) - log(rows[i]*cols[j]) + log(n))
	})

	floats.Scale(1/n, rows)
	floats.Scale(1/n, cols)
	nmi = mi / math.Sqrt(unit.entropy(rows)*unit.entropy(cols)+eps)
	return mi, nmi
}

func (u Unit) log(x float64) float64 {
	if u == Nats {
		return math.Log(x)
	}
	return math.Log2(x)
}

// entropy returns the Shannon entropy of the distribution p. Zero-probability
// classes contribute nothing.
func (u Unit) entropy(p []float64) float64 {
	h := stat.Entropy(p)
	if u == Nats {
		return h
	}
	return h / math.Ln2
}
