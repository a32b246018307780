package resolver

import (
	"log"
	"time"

	"platemap/types"
)

// Resolve collapses duplicate clusters in one batch of normalized records.
// It returns the deduplicated set (merged records plus untouched singletons,
// in input order) and the duplicate groups that were collapsed.
//
// Clustering is a single greedy pass: each unprocessed record seeds a cluster
// and claims every later unprocessed record the duplicate decision matches.
// This is a pragmatic approximation rather than a transitive closure, so
// membership can depend on input order. Input order is deterministic per run,
// which keeps runs repeatable. Pairwise comparison is O(n²) in batch size —
// fine at current volumes; a geographic blocking pre-filter is the known
// scaling lever if batches grow.
func Resolve(records []types.NormalizedRecord, now time.Time) ([]types.NormalizedRecord, []types.DuplicateGroup) {
	processed := make([]bool, len(records))
	resolved := make([]types.NormalizedRecord, 0, len(records))
	var groups []types.DuplicateGroup

	for i := range records {
		if processed[i] {
			continue
		}
		processed[i] = true

		cluster := []types.NormalizedRecord{records[i]}
		var simSum float64

		for j := i + 1; j < len(records); j++ {
			if processed[j] {
				continue
			}

			sim := Score(&records[i], &records[j])
			if IsDuplicate(sim) {
				processed[j] = true
				cluster = append(cluster, records[j])
				simSum += sim.Overall
			}
		}

		if len(cluster) == 1 {
			resolved = append(resolved, records[i])
			continue
		}

		merged := Merge(cluster, now)
		resolved = append(resolved, merged)
		groups = append(groups, types.DuplicateGroup{
			Records:    cluster,
			Confidence: simSum / float64(len(cluster)-1),
			Merged:     merged,
		})

		log.Printf("Merged %d duplicate record(s) into %q", len(cluster), merged.Name)
	}

	return resolved, groups
}
