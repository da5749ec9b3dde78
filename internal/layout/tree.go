package layout

// tree is the flat node map plus the ordered child index shared by Model and
// Snapshot.
type tree struct {
	rootID   string
	nodes    map[string]Node
	children map[string][]string
}

func newTree() tree {
	return tree{
		nodes:    make(map[string]Node),
		children: make(map[string][]string),
	}
}

func (t *tree) clone() tree {
	c := tree{
		rootID:   t.rootID,
		nodes:    make(map[string]Node, len(t.nodes)),
		children: make(map[string][]string, len(t.children)),
	}
	for id, n := range t.nodes {
		c.nodes[id] = n.clone()
	}
	for id, kids := range t.children {
		c.children[id] = append([]string(nil), kids...)
	}
	return c
}

func (t *tree) childNodes(id string) []Node {
	ids := t.children[id]
	out := make([]Node, 0, len(ids))
	for _, cid := range ids {
		out = append(out, t.nodes[cid])
	}
	return out
}

// subtree returns id and all its descendants, breadth first.
func (t *tree) subtree(id string) []string {
	out := []string{id}
	for i := 0; i < len(out); i++ {
		out = append(out, t.children[out[i]]...)
	}
	return out
}

// isDescendant reports whether candidate sits strictly below ancestor.
func (t *tree) isDescendant(ancestor, candidate string) bool {
	for cur, ok := t.nodes[candidate]; ok && cur.ParentID != ""; cur, ok = t.nodes[cur.ParentID] {
		if cur.ParentID == ancestor {
			return true
		}
	}
	return false
}

// path returns the chain from the root down to id, inclusive.
func (t *tree) path(id string) []Node {
	var rev []Node
	for cur, ok := t.nodes[id]; ok; cur, ok = t.nodes[cur.ParentID] {
		rev = append(rev, cur)
		if cur.ParentID == "" {
			break
		}
	}
	out := make([]Node, len(rev))
	for i, n := range rev {
		out[len(rev)-1-i] = n
	}
	return out
}

func (t *tree) detach(id string) {
	n := t.nodes[id]
	siblings := t.children[n.ParentID]
	for i, sid := range siblings {
		if sid == id {
			t.children[n.ParentID] = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
}
