package timeline

// Program is a compiled timeline: one list of ops per frame. It is immutable
// once built.
type Program struct {
	timing   Timing
	frames   [][]Op
	entities []string
}

// Compile validates actions and resolves them into a Program. It stops at
// the first error, which is always a *CompileError.
func Compile(actions []Action, t Timing) (*Program, error) {
	buckets, ids, err := Bucket(actions, t)
	if err != nil {
		return nil, err
	}
	frames, err := Resolve(buckets, t)
	if err != nil {
		return nil, err
	}
	return &Program{timing: t, frames: frames, entities: ids}, nil
}

// Timing returns the timing the program was compiled with.
func (p *Program) Timing() Timing { return p.timing }

// Frames is the number of frame buckets.
func (p *Program) Frames() int { return len(p.frames) }

// Ops returns the ops of frame f in application order, or nil when f is out
// of range. Callers must not modify the slice.
func (p *Program) Ops(f int) []Op {
	if f < 0 || f >= len(p.frames) {
		return nil
	}
	return p.frames[f]
}

// Entities returns entity ids in registration order.
func (p *Program) Entities() []string {
	return append([]string(nil), p.entities...)
}

// Stats summarises a program for logs.
type Stats struct {
	Frames   int
	Ops      int
	Entities int
	Busiest  int // frame with the most ops
}

// Stats counts ops across the table.
func (p *Program) Stats() Stats {
	s := Stats{Frames: len(p.frames), Entities: len(p.entities)}
	most := -1
	for f, ops := range p.frames {
		s.Ops += len(ops)
		if len(ops) > most {
			most, s.Busiest = len(ops), f
		}
	}
	return s
}
