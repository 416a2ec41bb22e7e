package domain

// Every aggregate status enumerates its legal successors in a table. A status
// missing from the table (or mapped to an empty set) is terminal.
func canTransition[S ~string](aggregate string, table map[S][]S, from, to S) error {
	for _, next := range table[from] {
		if next == to {
			return nil
		}
	}
	return &InvalidTransitionError{Aggregate: aggregate, From: string(from), To: string(to)}
}
