package proctree

import (
	"fmt"
	"strings"
)

// Tree maps every discovered pid to its direct children, in discovery order
type Tree struct {
	Root int

	children map[int][]int
	order    []int
	queries  int
}

// NewTree returns a tree holding only root, with no children yet
func NewTree(root int) *Tree {
	return &Tree{
		Root:     root,
		children: map[int][]int{root: {}},
		order:    []int{root},
	}
}

// AddChild appends child under parent and gives child its own empty entry.
// A child pid that already has an entry is reset rather than merged.
func (t *Tree) AddChild(parent, child int) {
	t.children[parent] = append(t.children[parent], child)
	if _, exists := t.children[child]; !exists {
		t.order = append(t.order, child)
	}
	t.children[child] = []int{}
}

// Children returns a copy of pid's direct children
func (t *Tree) Children(pid int) []int {
	children := t.children[pid]
	out := make([]int, len(children))
	copy(out, children)
	return out
}

func (t *Tree) Has(pid int) bool {
	_, ok := t.children[pid]
	return ok
}

// Keys returns every pid with an entry, in the order entries were created
func (t *Tree) Keys() []int {
	out := make([]int, len(t.order))
	copy(out, t.order)
	return out
}

// Map returns a copy of the pid -> children mapping
func (t *Tree) Map() map[int][]int {
	out := make(map[int][]int, len(t.children))
	for pid := range t.children {
		out[pid] = t.Children(pid)
	}
	return out
}

// Pids returns each distinct pid once: for every key in creation order, its
// children first and then the key itself. This is the delivery order used
// by KillTree.
func (t *Tree) Pids() []int {
	seen := make(map[int]bool, len(t.children))
	pids := make([]int, 0, len(t.children))
	visit := func(pid int) {
		if !seen[pid] {
			seen[pid] = true
			pids = append(pids, pid)
		}
	}
	for _, pid := range t.order {
		for _, child := range t.children[pid] {
			visit(child)
		}
		visit(pid)
	}
	return pids
}

// Len is the number of pids with an entry
func (t *Tree) Len() int {
	return len(t.children)
}

// Queries is the number of child enumerations issued while building the tree
func (t *Tree) Queries() int {
	return t.queries
}

// String renders the tree as an indented listing starting at Root
func (t *Tree) String() string {
	var sb strings.Builder
	visited := make(map[int]bool, len(t.children))

	var render func(pid int, depth int)
	render = func(pid int, depth int) {
		fmt.Fprintf(&sb, "%s%d\n", strings.Repeat("  ", depth), pid)
		if visited[pid] {
			return
		}
		visited[pid] = true
		for _, child := range t.children[pid] {
			render(child, depth+1)
		}
	}
	render(t.Root, 0)

	return sb.String()
}
