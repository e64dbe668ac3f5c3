package ml

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"bioreport/pkg/contracts/domain"
)

const (
	kmeansRestarts = 10
	kmeansMaxIter  = 300
)

// runKMeans clusters the standardized samples with Lloyd iterations from
// k-means++ seeds, keeping the best of several restarts by inertia.
func runKMeans(scaled *mat.Dense, nClusters int, rng *rand.Rand) (*domain.ClusteringResult, error) {
	n, _ := scaled.Dims()
	if nClusters > n {
		nClusters = n
	}
	if nClusters < 1 {
		nClusters = 1
	}

	bestInertia := math.Inf(1)
	var bestLabels []int
	var bestCenters [][]float64

	for r := 0; r < kmeansRestarts; r++ {
		labels, centers, inertia := kmeansOnce(scaled, nClusters, rng)
		if inertia < bestInertia {
			bestInertia, bestLabels, bestCenters = inertia, labels, centers
		}
	}

	return &domain.ClusteringResult{
		Model:      domain.ModelKMeans,
		Labels:     bestLabels,
		NClusters:  nClusters,
		Silhouette: silhouetteScore(scaled, bestLabels),
		Centers:    bestCenters,
		Inertia:    bestInertia,
		Scaled:     denseRows(scaled),
	}, nil
}

func kmeansOnce(x *mat.Dense, k int, rng *rand.Rand) (labels []int, centers [][]float64, inertia float64) {
	n, d := x.Dims()
	centers = kmeansppSeeds(x, k, rng)
	labels = make([]int, n)

	for iter := 0; iter < kmeansMaxIter; iter++ {
		moved := false
		for i := 0; i < n; i++ {
			if c := nearestCenter(x.RawRowView(i), centers); c != labels[i] {
				labels[i] = c
				moved = true
			}
		}
		if iter > 0 && !moved {
			break
		}

		// Recompute centroids; empty clusters keep their position.
		counts := make([]int, k)
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, d)
		}
		for i := 0; i < n; i++ {
			counts[labels[i]]++
			floats.Add(sums[labels[i]], x.RawRowView(i))
		}
		for c := range centers {
			if counts[c] > 0 {
				floats.Scale(1/float64(counts[c]), sums[c])
				centers[c] = sums[c]
			}
		}
	}

	inertia = 0
	for i := 0; i < n; i++ {
		inertia += sqDistance(x.RawRowView(i), centers[labels[i]])
	}
	return labels, centers, inertia
}

// kmeansppSeeds picks initial centroids with probability proportional to
// squared distance from the nearest already chosen seed.
func kmeansppSeeds(x *mat.Dense, k int, rng *rand.Rand) [][]float64 {
	n, _ := x.Dims()
	centers := make([][]float64, 0, k)
	centers = append(centers, copyRow(x.RawRowView(rng.Intn(n))))

	weights := make([]float64, n)
	for len(centers) < k {
		total := 0.0
		for i := 0; i < n; i++ {
			weights[i] = sqDistance(x.RawRowView(i), centers[nearestCenter(x.RawRowView(i), centers)])
			total += weights[i]
		}
		if total == 0 {
			centers = append(centers, copyRow(x.RawRowView(rng.Intn(n))))
			continue
		}
		target := rng.Float64() * total
		pick := n - 1
		acc := 0.0
		for i := 0; i < n; i++ {
			acc += weights[i]
			if acc >= target {
				pick = i
				break
			}
		}
		centers = append(centers, copyRow(x.RawRowView(pick)))
	}
	return centers
}

func nearestCenter(row []float64, centers [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, center := range centers {
		if d := sqDistance(row, center); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func sqDistance(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func copyRow(row []float64) []float64 {
	out := make([]float64, len(row))
	copy(out, row)
	return out
}
