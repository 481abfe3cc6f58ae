// Package dag provides the dependency graph used to order frame graph passes.
package dag

import (
	"container/heap"
	"errors"
	"fmt"
	"sort"
)

// ErrCycle is returned by Sort when the graph is not acyclic.
var ErrCycle = errors.New("dag: dependency cycle")

// Graph is a directed graph over the nodes 0..Len()-1.
// Self edges and duplicate edges are ignored.
type Graph struct {
	adj   [][]int
	indeg []int
	seen  map[[2]int]struct{}
}

// New returns an empty graph with n nodes.
func New(n int) *Graph {
	return &Graph{
		adj:   make([][]int, n),
		indeg: make([]int, n),
		seen:  make(map[[2]int]struct{}),
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.adj) }

// AddEdge adds the edge from → to and reports whether it was new.
func (g *Graph) AddEdge(from, to int) bool {
	if from == to {
		return false
	}
	key := [2]int{from, to}
	if _, ok := g.seen[key]; ok {
		return false
	}
	g.seen[key] = struct{}{}
	g.adj[from] = append(g.adj[from], to)
	g.indeg[to]++
	return true
}

// NumEdges returns the number of distinct edges.
func (g *Graph) NumEdges() int { return len(g.seen) }

// Edges returns all edges sorted by (from, to).
func (g *Graph) Edges() [][2]int {
	out := make([][2]int, 0, len(g.seen))
	for e := range g.seen {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// Sort returns a topological order computed with Kahn's algorithm. Among
// the nodes that are ready at any step the smallest index is emitted first,
// so the order is stable for a given graph and follows node numbering
// wherever dependencies allow.
//
// If the graph has a cycle Sort returns nil and an error wrapping ErrCycle.
func (g *Graph) Sort() ([]int, error) {
	n := len(g.adj)
	indeg := make([]int, n)
	copy(indeg, g.indeg)

	ready := make(minHeap, 0, n)
	for v := 0; v < n; v++ {
		if indeg[v] == 0 {
			ready = append(ready, v)
		}
	}
	heap.Init(&ready)

	order := make([]int, 0, n)
	for ready.Len() > 0 {
		v := heap.Pop(&ready).(int)
		order = append(order, v)
		for _, w := range g.adj[v] {
			indeg[w]--
			if indeg[w] == 0 {
				heap.Push(&ready, w)
			}
		}
	}

	if len(order) != n {
		return nil, fmt.Errorf("%w: %d of %d nodes unordered", ErrCycle, n-len(order), n)
	}
	return order, nil
}

// minHeap implements heap.Interface over node indices.
type minHeap []int

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
