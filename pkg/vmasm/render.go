package vmasm

// Render flattens a node sequence into the final ordered list of Hack
// assembly lines, one statement per line.
func Render(nodes []Node) []string {
	lines := make([]string, 0, len(nodes)*2)
	for _, n := range nodes {
		lines = append(lines, n.Render()...)
	}
	return lines
}
