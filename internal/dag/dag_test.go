package dag

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

func TestSortTieBreakByIndex(t *testing.T) {
	g := New(4)
	g.AddEdge(2, 0)
	g.AddEdge(3, 1)

	order, err := g.Sort()
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	want := []int{2, 0, 3, 1}
	if !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestSortNoEdges(t *testing.T) {
	order, err := New(3).Sort()
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if !slices.Equal(order, []int{0, 1, 2}) {
		t.Errorf("order = %v, want [0 1 2]", order)
	}
}

func TestSortEmpty(t *testing.T) {
	order, err := New(0).Sort()
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("order = %v, want empty", order)
	}
}

func TestSortCycle(t *testing.T) {
	g := New(3)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 0)

	order, err := g.Sort()
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}
	if order != nil {
		t.Errorf("order = %v, want nil", order)
	}
}

func TestAddEdgeIgnoresDuplicatesAndSelf(t *testing.T) {
	g := New(2)
	if !g.AddEdge(0, 1) {
		t.Error("first AddEdge(0, 1) = false, want true")
	}
	if g.AddEdge(0, 1) {
		t.Error("duplicate AddEdge(0, 1) = true, want false")
	}
	if g.AddEdge(1, 1) {
		t.Error("AddEdge(1, 1) = true, want false")
	}
	if g.NumEdges() != 1 {
		t.Errorf("NumEdges = %d, want 1", g.NumEdges())
	}
	if got := g.Edges(); len(got) != 1 || got[0] != [2]int{0, 1} {
		t.Errorf("Edges = %v, want [[0 1]]", got)
	}
}

func TestSortRandomDAGs(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for iter := 0; iter < 200; iter++ {
		n := 1 + rng.IntN(20)
		g := New(n)
		for i := 0; i < n*2; i++ {
			a, b := rng.IntN(n), rng.IntN(n)
			if a > b {
				a, b = b, a
			}
			g.AddEdge(a, b)
		}

		order, err := g.Sort()
		if err != nil {
			t.Fatalf("iter %d: Sort: %v", iter, err)
		}
		pos := make([]int, n)
		for i, v := range order {
			pos[v] = i
		}
		for _, e := range g.Edges() {
			if pos[e[0]] >= pos[e[1]] {
				t.Fatalf("iter %d: edge %v violated by order %v", iter, e, order)
			}
		}
	}
}
