package retrieval

import "sort"

// stageHit is one id/score pair produced by a single stage, already
// sorted best-first by that stage.
type stageHit struct {
	id    string
	score float32
}

// fusedHit is a stageHit after combining every stage that returned it.
type fusedHit struct {
	id    string
	score float32
}

// fuse combines fuzzyHits and semanticHits per opts.Fusion. Both
// inputs are assumed sorted best-first; rank is computed 1-indexed
// from that order.
func fuse(opts Options, fuzzyHits, semanticHits []stageHit) []fusedHit {
	switch opts.Fusion {
	case FusionFuzzyOnly:
		return toFusedHits(fuzzyHits)
	case FusionSemanticOnly:
		return toFusedHits(semanticHits)
	case FusionWeightedScore:
		return fuseWeighted(opts.FuzzyWeight, fuzzyHits, semanticHits)
	case FusionMaxScore:
		return fuseMax(fuzzyHits, semanticHits)
	default:
		return fuseRRF(opts.RRFK, fuzzyHits, semanticHits)
	}
}

func toFusedHits(hits []stageHit) []fusedHit {
	out := make([]fusedHit, len(hits))
	for i, h := range hits {
		out[i] = fusedHit{id: h.id, score: h.score}
	}
	return out
}

func fuseRRF(k int, fuzzyHits, semanticHits []stageHit) []fusedHit {
	if k <= 0 {
		k = 60
	}
	scores := map[string]float32{}
	for rank, h := range fuzzyHits {
		scores[h.id] += 1.0 / float32(k+rank+1)
	}
	for rank, h := range semanticHits {
		scores[h.id] += 1.0 / float32(k+rank+1)
	}
	return sortedFusedHits(scores)
}

func fuseWeighted(alpha float32, fuzzyHits, semanticHits []stageHit) []fusedHit {
	fuzzyScores := scoreMap(fuzzyHits)
	semanticScores := scoreMap(semanticHits)

	ids := map[string]bool{}
	for id := range fuzzyScores {
		ids[id] = true
	}
	for id := range semanticScores {
		ids[id] = true
	}

	scores := make(map[string]float32, len(ids))
	for id := range ids {
		scores[id] = alpha*fuzzyScores[id] + (1-alpha)*semanticScores[id]
	}
	return sortedFusedHits(scores)
}

func fuseMax(fuzzyHits, semanticHits []stageHit) []fusedHit {
	fuzzyScores := scoreMap(fuzzyHits)
	semanticScores := scoreMap(semanticHits)

	ids := map[string]bool{}
	for id := range fuzzyScores {
		ids[id] = true
	}
	for id := range semanticScores {
		ids[id] = true
	}

	scores := make(map[string]float32, len(ids))
	for id := range ids {
		scores[id] = max32(fuzzyScores[id], semanticScores[id])
	}
	return sortedFusedHits(scores)
}

func scoreMap(hits []stageHit) map[string]float32 {
	m := make(map[string]float32, len(hits))
	for _, h := range hits {
		m[h.id] = h.score
	}
	return m
}

func sortedFusedHits(scores map[string]float32) []fusedHit {
	out := make([]fusedHit, 0, len(scores))
	for id, score := range scores {
		out = append(out, fusedHit{id: id, score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].id < out[j].id
	})
	return out
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
