package coloranalysis

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// PositionClass is a coarse spatial classification of a cluster's member
// pixels within the sampled crop.
type PositionClass int

const (
	PositionUniform PositionClass = iota
	PositionCenter
	PositionEdge
	PositionScattered
)

// String returns a short label for diagnostics.
func (p PositionClass) String() string {
	switch p {
	case PositionCenter:
		return "center"
	case PositionEdge:
		return "edge"
	case PositionScattered:
		return "scattered"
	default:
		return "uniform"
	}
}

// Cluster is one k-means cluster over the sampled pixels.
type Cluster struct {
	Center   [3]float64 // Lab centroid
	Color    colorful.Color
	Weight   float64 // pixel-count fraction of the sample
	Pixels   int
	Position PositionClass
}

// Luminance returns the WCAG relative luminance of the cluster color.
func (c Cluster) Luminance() float64 { return relativeLuminance(c.Color) }

// kmeans clusters pixels in Lab space using k-means++ seeding. Iteration
// stops after maxIter rounds or once every centroid moves less than eps.
// Centroids that end an iteration empty are reseeded from a random pixel.
// The caller supplies the random source so results are reproducible.
func kmeans(pixels []pixel, k, maxIter int, eps float64, rng *rand.Rand) []Cluster {
	if len(pixels) == 0 || k <= 0 {
		return nil
	}
	if k > len(pixels) {
		k = len(pixels)
	}

	centers := seedCentroids(pixels, k, rng)
	assign := make([]int, len(pixels))

	for range maxIter {
		assignPixels(pixels, centers, assign)
		moved := updateCentroids(pixels, centers, assign, rng)
		if moved < eps {
			break
		}
	}
	assignPixels(pixels, centers, assign)

	return buildClusters(pixels, centers, assign)
}

// seedCentroids implements k-means++ seeding: each subsequent centroid is
// drawn with probability proportional to its squared distance from the
// nearest already-chosen centroid.
func seedCentroids(pixels []pixel, k int, rng *rand.Rand) [][3]float64 {
	centers := make([][3]float64, 0, k)
	first := pixels[rng.Intn(len(pixels))]
	centers = append(centers, [3]float64{first.l, first.a, first.b})

	dist := make([]float64, len(pixels))
	for len(centers) < k {
		total := 0.0
		for i, p := range pixels {
			best := math.Inf(1)
			for _, c := range centers {
				if d := labDistanceSq(p, c); d < best {
					best = d
				}
			}
			dist[i] = best
			total += best
		}
		if total <= 0 {
			// All pixels coincide with existing centroids.
			p := pixels[rng.Intn(len(pixels))]
			centers = append(centers, [3]float64{p.l, p.a, p.b})
			continue
		}
		target := rng.Float64() * total
		acc := 0.0
		chosen := len(pixels) - 1
		for i, d := range dist {
			acc += d
			if acc >= target {
				chosen = i
				break
			}
		}
		p := pixels[chosen]
		centers = append(centers, [3]float64{p.l, p.a, p.b})
	}
	return centers
}

func assignPixels(pixels []pixel, centers [][3]float64, assign []int) {
	for i, p := range pixels {
		best := 0
		bestDist := labDistanceSq(p, centers[0])
		for j := 1; j < len(centers); j++ {
			if d := labDistanceSq(p, centers[j]); d < bestDist {
				bestDist = d
				best = j
			}
		}
		assign[i] = best
	}
}

// updateCentroids recomputes centroids and returns the largest movement in
// Lab distance. Empty clusters are reseeded from a random pixel.
func updateCentroids(pixels []pixel, centers [][3]float64, assign []int, rng *rand.Rand) float64 {
	sums := make([][3]float64, len(centers))
	counts := make([]int, len(centers))
	for i, p := range pixels {
		c := assign[i]
		sums[c][0] += p.l
		sums[c][1] += p.a
		sums[c][2] += p.b
		counts[c]++
	}
	maxMove := 0.0
	for j := range centers {
		if counts[j] == 0 {
			p := pixels[rng.Intn(len(pixels))]
			centers[j] = [3]float64{p.l, p.a, p.b}
			maxMove = math.Inf(1)
			continue
		}
		next := [3]float64{
			sums[j][0] / float64(counts[j]),
			sums[j][1] / float64(counts[j]),
			sums[j][2] / float64(counts[j]),
		}
		move := math.Sqrt((next[0]-centers[j][0])*(next[0]-centers[j][0]) +
			(next[1]-centers[j][1])*(next[1]-centers[j][1]) +
			(next[2]-centers[j][2])*(next[2]-centers[j][2]))
		if move > maxMove {
			maxMove = move
		}
		centers[j] = next
	}
	return maxMove
}

func buildClusters(pixels []pixel, centers [][3]float64, assign []int) []Cluster {
	clusters := make([]Cluster, 0, len(centers))
	for j, c := range centers {
		members := make([]pixel, 0)
		for i, p := range pixels {
			if assign[i] == j {
				members = append(members, p)
			}
		}
		if len(members) == 0 {
			continue
		}
		cl := Cluster{
			Center: c,
			Color:  colorful.Lab(c[0], c[1], c[2]).Clamped(),
			Weight: float64(len(members)) / float64(len(pixels)),
			Pixels: len(members),
		}
		cl.Position = classifyPosition(members)
		clusters = append(clusters, cl)
	}
	// Heaviest first; selection heuristics index from the front.
	sortClustersByWeight(clusters)
	return clusters
}

func sortClustersByWeight(clusters []Cluster) {
	for i := 1; i < len(clusters); i++ {
		v := clusters[i]
		j := i - 1
		for j >= 0 && clusters[j].Weight < v.Weight {
			clusters[j+1] = clusters[j]
			j--
		}
		clusters[j+1] = v
	}
}

// classifyPosition buckets a cluster's member positions into one of the
// coarse spatial classes. Positions are normalized to [0,1].
func classifyPosition(members []pixel) PositionClass {
	if len(members) == 0 {
		return PositionUniform
	}
	const (
		borderBand    = 0.15
		middleLow     = 1.0 / 3.0
		middleHigh    = 2.0 / 3.0
		edgeFraction  = 0.5
		centerFrac    = 0.6
		scatterCutoff = 0.045
	)
	edge, center := 0, 0
	meanX, meanY := 0.0, 0.0
	for _, p := range members {
		if p.x < borderBand || p.x > 1-borderBand || p.y < borderBand || p.y > 1-borderBand {
			edge++
		}
		if p.x >= middleLow && p.x <= middleHigh && p.y >= middleLow && p.y <= middleHigh {
			center++
		}
		meanX += p.x
		meanY += p.y
	}
	n := float64(len(members))
	meanX /= n
	meanY /= n

	if float64(edge)/n > edgeFraction {
		return PositionEdge
	}
	if float64(center)/n > centerFrac {
		return PositionCenter
	}

	varPos := 0.0
	for _, p := range members {
		varPos += (p.x-meanX)*(p.x-meanX) + (p.y-meanY)*(p.y-meanY)
	}
	varPos /= n
	if varPos > scatterCutoff*2 {
		return PositionScattered
	}
	return PositionUniform
}
