package entities

// planBatches groups systems into batches that can run concurrently. A system
// goes one batch after the latest earlier system it conflicts with, so every
// conflicting pair keeps its registration order. Indices inside a batch are
// ascending.
func planBatches(definitions []*EntitySystemDefinition) [][]int {
	level := make([]int, len(definitions))
	var batches [][]int
	for i, def := range definitions {
		for j := 0; j < i; j++ {
			if def.ConflictsWith(definitions[j]) && level[j]+1 > level[i] {
				level[i] = level[j] + 1
			}
		}
		for len(batches) <= level[i] {
			batches = append(batches, nil)
		}
		batches[level[i]] = append(batches[level[i]], i)
	}
	return batches
}
