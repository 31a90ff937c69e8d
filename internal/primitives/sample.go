package primitives

import (
	"context"
	"math/rand/v2"
	"sort"

	"github.com/specialistvlad/metagrid/internal/dataset"
)

// Sample draws at most limit rows of x without replacement. With a target,
// every class keeps its share of the rows (stratified); when there are more
// classes than limit, limit classes are chosen and keep one row each.
// Without a target, rows are drawn uniformly. The same seed always selects the same rows. The
// selected rows keep their original order.
func Sample(ctx context.Context, x *dataset.Table, y *dataset.Column, seed int64, limit int) (*dataset.Table, *dataset.Column, error) {
	n := x.NumRows()
	if limit <= 0 || n <= limit {
		return x, y, nil
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))

	var rows []int
	if y == nil {
		rows = pick(rng, sequence(0, n), limit)
	} else {
		groups, order := groupRows(y)
		if len(order) > limit {
			order = pickLabels(rng, order, limit)
		}
		sizes := make([]int, len(order))
		for i, label := range order {
			sizes[i] = len(groups[label])
		}
		for i, share := range allocate(sizes, limit) {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			rows = append(rows, pick(rng, groups[order[i]], share)...)
		}
	}
	sort.Ints(rows)

	var ys *dataset.Column
	if y != nil {
		ys = y.Take(rows)
	}
	return x.Take(rows), ys, nil
}

// allocate splits limit rows across classes of the given sizes. Every class
// gets one row and the rest is shared in proportion to the remaining class
// sizes by largest remainder, so the shares sum to exactly
// min(limit, sum(sizes)). It expects len(sizes) <= limit.
func allocate(sizes []int, limit int) []int {
	total := 0
	for _, size := range sizes {
		total += size
	}
	shares := make([]int, len(sizes))
	if total <= limit {
		copy(shares, sizes)
		return shares
	}

	spare := limit - len(sizes)
	pool := total - len(sizes)
	remainders := make([]int, len(sizes))
	assigned := 0
	for i, size := range sizes {
		quota := spare * (size - 1)
		shares[i] = 1 + quota/pool
		remainders[i] = quota % pool
		assigned += shares[i]
	}

	byRemainder := sequence(0, len(sizes))
	sort.SliceStable(byRemainder, func(a, b int) bool {
		return remainders[byRemainder[a]] > remainders[byRemainder[b]]
	})
	for _, i := range byRemainder[:limit-assigned] {
		shares[i]++
	}
	return shares
}

// pickLabels keeps k labels chosen by rng, in their original order.
func pickLabels(rng *rand.Rand, order []string, k int) []string {
	kept := pick(rng, sequence(0, len(order)), k)
	sort.Ints(kept)
	out := make([]string, len(kept))
	for i, idx := range kept {
		out[i] = order[idx]
	}
	return out
}

// groupRows buckets row indices by label. Missing labels form their own
// group keyed by "".
func groupRows(y *dataset.Column) (map[string][]int, []string) {
	groups := make(map[string][]int)
	var order []string
	for i := 0; i < y.Len(); i++ {
		label := y.Label(i)
		if _, ok := groups[label]; !ok {
			order = append(order, label)
		}
		groups[label] = append(groups[label], i)
	}
	return groups, order
}

func pick(rng *rand.Rand, rows []int, k int) []int {
	if k >= len(rows) {
		return append([]int(nil), rows...)
	}
	shuffled := append([]int(nil), rows...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:k]
}

func sequence(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}
