package dist

// CheckCyclical reports whether making a depend on b would create a
// circular dependency: true iff some dependency path from b reaches a in
// the current (resolved) graph. Traversal is a DFS with 3-color marking:
// white (unvisited), gray (in the current path), black (fully explored).
// Encountering a gray node means the graph already contains a cycle,
// which is equally unsafe.
func CheckCyclical(a, b Node) bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[Node]int)

	var visit func(n Node) bool
	visit = func(n Node) bool {
		switch color[n] {
		case black:
			return false
		case gray:
			return true
		}
		color[n] = gray

		for _, child := range Resolve(n).Dependencies() {
			if child == a {
				return true
			}
			if visit(child) {
				return true
			}
		}

		color[n] = black
		return false
	}

	return visit(b)
}
