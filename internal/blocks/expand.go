package blocks

// Expander adds the children of disabled parents to a disable selection.
//
// By default it expands a single level: grandchildren are only included when the
// table lists them under the selected parent. Transitive follows children that are
// themselves parents until nothing new is found.
type Expander struct {
	Hierarchy  HierarchyMap
	Transitive bool
}

// ExpandGlobal returns selected plus the children of every selected parent.
// Empty identifiers are ignored. The input is not modified.
func (e Expander) ExpandGlobal(selected BlockSet) BlockSet {
	out := make(BlockSet, len(selected))
	for id := range selected {
		if id == "" {
			continue
		}
		out.Add(id)
		e.visit(id, func(child BlockID) { out.Add(child) })
	}
	return out
}

// ExpandByType propagates each parent's content types to its children. A child that
// already has an entry gets the union, so the result does not depend on map order.
// Entries with an empty identifier or no types are dropped. The input is not modified.
func (e Expander) ExpandByType(selected TypeMap) TypeMap {
	out := make(TypeMap, len(selected))
	for id, types := range selected {
		if id == "" || len(types) == 0 {
			continue
		}
		out.Union(id, types)
		e.visit(id, func(child BlockID) { out.Union(child, types) })
	}
	return out
}

func (e Expander) visit(parent BlockID, fn func(BlockID)) {
	if !e.Transitive {
		for _, child := range e.Hierarchy[parent] {
			fn(child)
		}
		return
	}
	seen := map[BlockID]bool{parent: true}
	queue := append([]BlockID(nil), e.Hierarchy[parent]...)
	for len(queue) > 0 {
		child := queue[0]
		queue = queue[1:]
		if seen[child] {
			continue
		}
		seen[child] = true
		fn(child)
		queue = append(queue, e.Hierarchy[child]...)
	}
}

// ExpandGlobal is Expander{Hierarchy: h}.ExpandGlobal(selected).
func ExpandGlobal(h HierarchyMap, selected BlockSet) BlockSet {
	return Expander{Hierarchy: h}.ExpandGlobal(selected)
}

// ExpandByType is Expander{Hierarchy: h}.ExpandByType(selected).
func ExpandByType(h HierarchyMap, selected TypeMap) TypeMap {
	return Expander{Hierarchy: h}.ExpandByType(selected)
}
