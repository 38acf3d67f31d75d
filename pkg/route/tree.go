package route

import "strings"

// node is a node in the segment tree.
type node struct {
	// segment is the key segment this node matches
	segment string

	// isParam indicates this is a parameter segment (:id)
	isParam bool

	// isCatchAll indicates this is a catch-all segment (*rest)
	isCatchAll bool

	// paramName is the parameter name (without : or *)
	paramName string

	// def is the index of the definition ending here, or -1
	def int

	// children are static segment children
	children []*node

	// paramChild is the dynamic parameter child (:id)
	paramChild *node

	// catchAllChild is the catch-all child (*rest)
	catchAllChild *node
}

func newNode(segment string) *node {
	return &node{segment: segment, def: -1}
}

// findChild finds a child node with an exact segment match.
func (n *node) findChild(segment string) *node {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

func (n *node) addChild(segment string) *node {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := newNode(segment)
	n.children = append(n.children, child)
	return child
}

func (n *node) addParamChild(name string) *node {
	if n.paramChild != nil {
		return n.paramChild
	}
	child := newNode("")
	child.isParam = true
	child.paramName = name
	n.paramChild = child
	return child
}

func (n *node) addCatchAllChild(name string) *node {
	if n.catchAllChild != nil {
		return n.catchAllChild
	}
	child := newNode("")
	child.isCatchAll = true
	child.paramName = name
	n.catchAllChild = child
	return child
}

// insert adds a key to the tree and returns its terminal node.
func (n *node) insert(key string) *node {
	current := n
	for _, seg := range splitKey(key) {
		switch {
		case strings.HasPrefix(seg, "*"):
			// Catch-all consumes the rest of the key
			return current.addCatchAllChild(seg[1:])
		case strings.HasPrefix(seg, ":"):
			current = current.addParamChild(seg[1:])
		default:
			current = current.addChild(seg)
		}
	}
	return current
}

// match finds the node for the given segments.
// Priority: static > param > catch-all > non-exact ancestor.
// exact reports whether the definition at index i is exact.
func (n *node) match(segments []string, params map[string]string, exact func(int) bool) (*node, string, bool) {
	if len(segments) == 0 {
		if n.def >= 0 {
			return n, "", true
		}
		return nil, "", false
	}

	seg, remaining := segments[0], segments[1:]

	if child := n.findChild(seg); child != nil {
		if found, rest, ok := child.match(remaining, params, exact); ok {
			return found, rest, true
		}
	}

	if n.paramChild != nil {
		params[n.paramChild.paramName] = seg
		if found, rest, ok := n.paramChild.match(remaining, params, exact); ok {
			return found, rest, true
		}
		delete(params, n.paramChild.paramName)
	}

	if n.catchAllChild != nil && n.catchAllChild.def >= 0 {
		params[n.catchAllChild.paramName] = strings.Join(segments, "/")
		return n.catchAllChild, "", true
	}

	if n.def >= 0 && !exact(n.def) {
		return n, strings.Join(segments, "/"), true
	}

	return nil, "", false
}

// splitKey splits a route key into segments, ignoring empty ones.
func splitKey(key string) []string {
	parts := strings.Split(strings.Trim(key, "/"), "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
