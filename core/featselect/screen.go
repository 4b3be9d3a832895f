package featselect

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Correlation selects the correlation statistic used by the screening
// routines.
type Correlation int

const (
	Pearson Correlation = iota
	Spearman
	Kendall
)

func (c Correlation) String() string {
	switch c {
	case Pearson:
		return "pearson"
	case Spearman:
		return "spearman"
	case Kendall:
		return "kendall"
	}
	return fmt.Sprintf("correlation(%d)", int(c))
}

// ParseCorrelation maps a configuration key to a Correlation.
func ParseCorrelation(key string) (Correlation, error) {
	switch key {
	case "pearson":
		return Pearson, nil
	case "spearman":
		return Spearman, nil
	case "kendall":
		return Kendall, nil
	}
	return 0, fmt.Errorf("featselect: unknown correlation %q", key)
}

// Partition is the outcome of a screening pass: every input column index
// lands in exactly one of the two sets.
type Partition struct {
	Accepted []int
	Rejected []int
}

// correlate computes the chosen correlation between a feature column and
// the target.
func correlate(x, y []float64, c Correlation) float64 {
	switch c {
	case Spearman:
		return stat.Correlation(ranks(x), ranks(y), nil)
	case Kendall:
		return stat.Kendall(x, y, nil)
	default:
		return stat.Correlation(x, y, nil)
	}
}

// ranks returns average ranks (ties share the mean rank), the transform
// under Spearman correlation.
func ranks(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	r := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			r[idx[k]] = avg
		}
		i = j + 1
	}
	return r
}

// topBySize partitions indices by descending |score|, accepting at most
// size. NaN scores (constant columns) sort last. Ties break on the
// original index so the partition is deterministic.
func topBySize(scores []float64, size int) Partition {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	key := func(i int) float64 {
		s := math.Abs(scores[i])
		if math.IsNaN(s) {
			return -1
		}
		return s
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := key(idx[a]), key(idx[b])
		if ka != kb {
			return ka > kb
		}
		return idx[a] < idx[b]
	})

	if size > len(idx) {
		size = len(idx)
	}
	if size < 0 {
		size = 0
	}

	p := Partition{
		Accepted: append([]int(nil), idx[:size]...),
		Rejected: append([]int(nil), idx[size:]...),
	}
	sort.Ints(p.Accepted)
	sort.Ints(p.Rejected)
	return p
}

// SureIndependence ranks features by absolute Pearson correlation with
// the target and accepts the top size columns.
func SureIndependence(train *mat.Dense, target []float64, size int) Partition {
	_, d := train.Dims()
	scores := make([]float64, d)
	for j := 0; j < d; j++ {
		scores[j] = correlate(mat.Col(nil, j, train), target, Pearson)
	}
	return topBySize(scores, size)
}

// RobustRank screens by a rank correlation statistic, the more outlier
// tolerant variant of SureIndependence.
func RobustRank(train *mat.Dense, target []float64, size int, corr Correlation) Partition {
	_, d := train.Dims()
	scores := make([]float64, d)
	for j := 0; j < d; j++ {
		scores[j] = correlate(mat.Col(nil, j, train), target, corr)
	}
	return topBySize(scores, size)
}

// Iterative screens in small batches: each round accepts the step
// features most correlated with the current residual, refits a least
// squares model on everything accepted so far, and screens the remainder
// against the new residual. Used when the feature count is more than
// twice the sample count, where single-pass screening is unreliable.
func Iterative(train *mat.Dense, target []float64, size, step int, corr Correlation) Partition {
	n, d := train.Dims()
	if step < 1 {
		step = 1
	}

	residual := append([]float64(nil), target...)
	accepted := make([]int, 0, size)
	inAccepted := make(map[int]bool, size)

	for len(accepted) < size && len(accepted) < d {
		// Score the remaining columns against the residual.
		scores := make([]float64, d)
		for j := 0; j < d; j++ {
			if inAccepted[j] {
				scores[j] = math.Inf(-1)
				continue
			}
			s := math.Abs(correlate(mat.Col(nil, j, train), residual, corr))
			if math.IsNaN(s) {
				s = -1
			}
			scores[j] = s
		}

		take := step
		if remaining := size - len(accepted); take > remaining {
			take = remaining
		}
		idx := make([]int, 0, d)
		for j := 0; j < d; j++ {
			if !inAccepted[j] {
				idx = append(idx, j)
			}
		}
		sort.SliceStable(idx, func(a, b int) bool {
			if scores[idx[a]] != scores[idx[b]] {
				return scores[idx[a]] > scores[idx[b]]
			}
			return idx[a] < idx[b]
		})
		if take > len(idx) {
			take = len(idx)
		}
		batch := idx[:take]
		for _, j := range batch {
			inAccepted[j] = true
			accepted = append(accepted, j)
		}

		// Refit on the accepted set and screen the rest against what
		// the linear model cannot explain yet.
		sub := selectColumns(train, accepted)
		var coef mat.VecDense
		if err := coef.SolveVec(sub, mat.NewVecDense(n, append([]float64(nil), target...))); err != nil {
			// Singular accepted set: keep the current residual.
			continue
		}
		var fitted mat.VecDense
		fitted.MulVec(sub, &coef)
		for i := 0; i < n; i++ {
			residual[i] = target[i] - fitted.AtVec(i)
		}
	}

	sort.Ints(accepted)
	rejected := make([]int, 0, d-len(accepted))
	for j := 0; j < d; j++ {
		if !inAccepted[j] {
			rejected = append(rejected, j)
		}
	}
	return Partition{Accepted: accepted, Rejected: rejected}
}

// IterativeStep returns the batch size used by Iterative for a d-feature,
// n-sample problem: round(sqrt(log(d/n))) with a floor of one.
func IterativeStep(d, n int) int {
	s := int(math.Round(math.Sqrt(math.Log(float64(d) / float64(n)))))
	if s < 1 {
		s = 1
	}
	return s
}
