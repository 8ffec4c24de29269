package analyzer

import (
	"context"
	"runtime"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/cloneseek/cloneseek/internal/constants"
)

// unionFind is a plain union-by-rank structure with path compression over
// dense indices.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(x, y int) {
	rx, ry := uf.find(x), uf.find(y)
	if rx == ry {
		return
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
}

// ConnectedComponents partitions the similarity graph over the given node
// ids into connected components. Nodes with no incident edge form singleton
// components. Each component is sorted ascending and components are ordered
// by their smallest member, so the output is a canonical partition.
func ConnectedComponents(nodes []int, edges []DocumentPair) [][]int {
	index := indexNodes(nodes)
	uf := newUnionFind(len(nodes))
	for _, edge := range edges {
		ai, aok := index[edge.A]
		bi, bok := index[edge.B]
		if aok && bok {
			uf.union(ai, bi)
		}
	}
	return collectComponents(nodes, index, uf)
}

// ConnectedComponentsParallel computes the same partition as
// ConnectedComponents. Edge chunks are resolved into local merge lists
// concurrently, then folded into one union-find; the result is always equal
// to the sequential partition. Below the activation gate the sequential path
// runs directly.
func ConnectedComponentsParallel(ctx context.Context, nodes []int, edges []DocumentPair) [][]int {
	workers := runtime.NumCPU()
	if len(edges) < constants.MinEdgesForParallel || workers < 2 {
		return ConnectedComponents(nodes, edges)
	}

	index := indexNodes(nodes)
	chunkSize := (len(edges) + workers - 1) / workers

	// Each worker reduces its chunk to representative merges over a local
	// union-find; the merge lists are far smaller than the chunks.
	p := pool.NewWithResults[[][2]int]().WithMaxGoroutines(workers)
	for start := 0; start < len(edges); start += chunkSize {
		end := start + chunkSize
		if end > len(edges) {
			end = len(edges)
		}
		chunk := edges[start:end]
		p.Go(func() [][2]int {
			local := newUnionFind(len(nodes))
			var merges [][2]int
			for _, edge := range chunk {
				if ctx.Err() != nil {
					break
				}
				ai, aok := index[edge.A]
				bi, bok := index[edge.B]
				if !aok || !bok {
					continue
				}
				if local.find(ai) != local.find(bi) {
					local.union(ai, bi)
					merges = append(merges, [2]int{ai, bi})
				}
			}
			return merges
		})
	}

	uf := newUnionFind(len(nodes))
	for _, merges := range p.Wait() {
		for _, m := range merges {
			uf.union(m[0], m[1])
		}
	}
	return collectComponents(nodes, index, uf)
}

func indexNodes(nodes []int) map[int]int {
	index := make(map[int]int, len(nodes))
	for i, id := range nodes {
		index[id] = i
	}
	return index
}

func collectComponents(nodes []int, index map[int]int, uf *unionFind) [][]int {
	byRoot := make(map[int][]int)
	for _, id := range nodes {
		root := uf.find(index[id])
		byRoot[root] = append(byRoot[root], id)
	}

	components := make([][]int, 0, len(byRoot))
	for _, members := range byRoot {
		sort.Ints(members)
		components = append(components, members)
	}
	sort.Slice(components, func(i, j int) bool {
		return components[i][0] < components[j][0]
	})
	return components
}
