package vmasm

// Optimize runs the single peephole pass the VM lowerer documents: a Push
// immediately followed by a Pop collapses to 'Address(SP); Assign(A, M)',
// since the round trip to the stack is wasted work — the value that would be
// pushed is already sitting in D, and the would-be pop only wants to leave A
// addressing the current top.
//
// Comment nodes interleaved between the Push and the Pop are preserved in
// their original position relative to one another, but their position
// relative to the collapsed pair itself is not rederived from anything
// semantic — it's whatever falls out of a single forward scan. Whether a
// comment that sat between the Push and the Pop should now sort before or
// after the collapsed replacement is left unresolved; this pass makes no
// attempt to re-anchor it.
func Optimize(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))

	for i := 0; i < len(nodes); i++ {
		if _, ok := nodes[i].(Push); ok {
			if j, comments := nextNonComment(nodes, i+1); j < len(nodes) {
				if _, ok := nodes[j].(Pop); ok {
					out = append(out, comments...)
					out = append(out, Address{Label: "SP"}, Assign{Dest: "A", Comp: "M"})
					i = j
					continue
				}
			}
		}
		out = append(out, nodes[i])
	}

	return out
}

// nextNonComment scans forward from 'from', collecting any leading Comment
// nodes, and returns the index of the first non-Comment node found (len(nodes)
// if the stream runs out first) along with the comments skipped over.
func nextNonComment(nodes []Node, from int) (int, []Node) {
	var comments []Node
	i := from
	for i < len(nodes) {
		if c, ok := nodes[i].(Comment); ok {
			comments = append(comments, c)
			i++
			continue
		}
		break
	}
	return i, comments
}
