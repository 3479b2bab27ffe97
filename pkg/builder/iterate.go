package builder

// VisitFunc receives a copy of an element and returns the element that should
// replace it. Returning nil drops the element from the tree.
type VisitFunc func(Element) Element

// Iterate walks the content tree depth first and applies fn to every element,
// parents before children. A new tree is returned; content is left untouched.
func Iterate(content []Element, fn VisitFunc) []Element {
	if content == nil {
		return nil
	}
	out := make([]Element, 0, len(content))
	for _, element := range content {
		if element == nil {
			continue
		}
		visited := element.Clone()
		if fn != nil {
			visited = fn(visited)
		}
		if visited == nil {
			continue
		}
		if _, ok := visited[KeyChildren]; ok {
			visited[KeyChildren] = Iterate(visited.Children(), fn)
		}
		out = append(out, visited)
	}
	return out
}

// Reassign gives every element in the tree a fresh identifier so the content
// can be inserted next to existing elements without id clashes.
func Reassign(content []Element, next IDFunc) []Element {
	if next == nil {
		next = RandomID
	}
	return Iterate(content, func(element Element) Element {
		element[KeyID] = next()
		return element
	})
}

// Count returns the number of elements in the tree, nested ones included.
func Count(content []Element) int {
	total := 0
	for _, element := range content {
		if element == nil {
			continue
		}
		total += 1 + Count(element.Children())
	}
	return total
}
