package analyzer

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairEdges(pairs ...[2]int) []DocumentPair {
	edges := make([]DocumentPair, len(pairs))
	for i, p := range pairs {
		edges[i] = NewDocumentPair(p[0], p[1])
	}
	return edges
}

func TestConnectedComponents_Chain(t *testing.T) {
	nodes := []int{0, 1, 2, 3}
	edges := pairEdges([2]int{0, 1}, [2]int{1, 2}, [2]int{2, 3})

	components := ConnectedComponents(nodes, edges)

	assert.Equal(t, [][]int{{0, 1, 2, 3}}, components)
}

func TestConnectedComponents_Star(t *testing.T) {
	nodes := []int{0, 1, 2, 3, 4}
	edges := pairEdges([2]int{0, 1}, [2]int{0, 2}, [2]int{0, 3}, [2]int{0, 4})

	components := ConnectedComponents(nodes, edges)

	assert.Equal(t, [][]int{{0, 1, 2, 3, 4}}, components)
}

func TestConnectedComponents_Cycle(t *testing.T) {
	nodes := []int{0, 1, 2}
	edges := pairEdges([2]int{0, 1}, [2]int{1, 2}, [2]int{2, 0})

	components := ConnectedComponents(nodes, edges)

	assert.Equal(t, [][]int{{0, 1, 2}}, components)
}

func TestConnectedComponents_DisjointAndSingletons(t *testing.T) {
	nodes := []int{5, 1, 9, 3, 7}
	edges := pairEdges([2]int{1, 5}, [2]int{3, 9})

	components := ConnectedComponents(nodes, edges)

	assert.Equal(t, [][]int{{1, 5}, {3, 9}, {7}}, components)
}

func TestConnectedComponents_NoEdges(t *testing.T) {
	components := ConnectedComponents([]int{2, 0, 1}, nil)

	assert.Equal(t, [][]int{{0}, {1}, {2}}, components)
}

func TestConnectedComponents_UnknownNodesIgnored(t *testing.T) {
	nodes := []int{0, 1}
	edges := pairEdges([2]int{0, 99}, [2]int{0, 1})

	components := ConnectedComponents(nodes, edges)

	assert.Equal(t, [][]int{{0, 1}}, components)
}

func TestConnectedComponents_Empty(t *testing.T) {
	assert.Empty(t, ConnectedComponents(nil, nil))
}

func TestConnectedComponentsParallel_MatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	nodes := make([]int, 500)
	for i := range nodes {
		nodes[i] = i
	}

	for trial := 0; trial < 10; trial++ {
		edges := make([]DocumentPair, 0, 600)
		for len(edges) < 600 {
			a, b := rng.Intn(500), rng.Intn(500)
			if a != b {
				edges = append(edges, NewDocumentPair(a, b))
			}
		}

		sequential := ConnectedComponents(nodes, edges)
		parallel := ConnectedComponentsParallel(context.Background(), nodes, edges)
		require.Equal(t, sequential, parallel, "trial %d", trial)
	}
}

func TestConnectedComponentsParallel_SmallInputUsesSequentialPath(t *testing.T) {
	nodes := []int{0, 1, 2}
	edges := pairEdges([2]int{0, 1})

	components := ConnectedComponentsParallel(context.Background(), nodes, edges)

	assert.Equal(t, [][]int{{0, 1}, {2}}, components)
}

func TestUnionFind(t *testing.T) {
	uf := newUnionFind(5)

	assert.NotEqual(t, uf.find(0), uf.find(1))

	uf.union(0, 1)
	uf.union(3, 4)
	assert.Equal(t, uf.find(0), uf.find(1))
	assert.Equal(t, uf.find(3), uf.find(4))
	assert.NotEqual(t, uf.find(0), uf.find(3))

	uf.union(1, 3)
	assert.Equal(t, uf.find(0), uf.find(4))
	assert.NotEqual(t, uf.find(0), uf.find(2))
}
