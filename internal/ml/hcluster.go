package ml

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"bioreport/pkg/contracts/domain"
)

// runHierarchical performs Ward-linkage agglomerative clustering on the
// standardized samples. Merge distances are maintained with the
// Lance-Williams recurrence, so no dendrogram needs materializing.
func runHierarchical(scaled *mat.Dense, nClusters int) (*domain.ClusteringResult, error) {
	n, _ := scaled.Dims()
	if nClusters > n {
		nClusters = n
	}
	if nClusters < 1 {
		nClusters = 1
	}

	// Squared Euclidean distances between current clusters.
	dist := make([][]float64, n)
	base := pairwiseDistances(scaled)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			dist[i][j] = base[i][j] * base[i][j]
		}
	}

	size := make([]int, n)
	active := make([]bool, n)
	members := make([][]int, n)
	for i := 0; i < n; i++ {
		size[i] = 1
		active[i] = true
		members[i] = []int{i}
	}

	for remaining := n; remaining > nClusters; remaining-- {
		// Closest active pair.
		bi, bj, best := -1, -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if active[j] && dist[i][j] < best {
					bi, bj, best = i, j, dist[i][j]
				}
			}
		}
		if bi < 0 {
			break
		}

		// Merge bj into bi and update Ward distances.
		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			ni, nj, nk := float64(size[bi]), float64(size[bj]), float64(size[k])
			d := ((ni+nk)*dist[bi][k] + (nj+nk)*dist[bj][k] - nk*dist[bi][bj]) / (ni + nj + nk)
			dist[bi][k], dist[k][bi] = d, d
		}
		size[bi] += size[bj]
		members[bi] = append(members[bi], members[bj]...)
		active[bj] = false
	}

	// Number clusters by their smallest member index for stable labels.
	labels := make([]int, n)
	next := 0
	for i := 0; i < n; i++ {
		if !active[i] {
			continue
		}
		for _, m := range members[i] {
			labels[m] = next
		}
		next++
	}

	return &domain.ClusteringResult{
		Model:      domain.ModelHierarchical,
		Labels:     labels,
		NClusters:  next,
		Silhouette: silhouetteScore(scaled, labels),
		Linkage:    "ward",
		Scaled:     denseRows(scaled),
	}, nil
}
