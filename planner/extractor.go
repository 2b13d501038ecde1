package planner

// GetTemplate walks the solved (n, 0, L) cell and emits, for each stage, the
// ordered list of layer names it covers. The returned slice has exactly n
// elements, and their concatenation equals the full ordered layer name list
// (spec.md §4.6, §8).
func GetTemplate(s *Solver, n int) ([][]string, error) {
	L := s.Profile().NumLayers()
	if n <= 0 || n > L {
		return nil, newErr(ErrInvalidNodeCount, nil, "node count %d invalid for %d layers", n, L)
	}

	result, feasible, ok := s.Cell(n, 0, L)
	if !ok {
		return nil, newErr(ErrInternalInvariantViolated, nil, "missing cache cell (%d, 0, %d); solver was not run to this stage count", n, L)
	}
	if !feasible {
		return nil, newErr(ErrNoTemplate, nil, "no feasible %d-stage partition exists for this profile", n)
	}

	names := s.Profile().Names()
	template := make([][]string, len(result.Stages))
	for idx, stage := range result.Stages {
		template[idx] = append([]string(nil), names[stage.Begin:stage.End]...)
	}
	return template, nil
}
