package shiftreg

// InputPin is one input of a chain. Reading it never touches the wire.
type InputPin[C Inputs] struct {
	chain *Shared[C]
	index int
}

// NewInputPin binds a handle to input index of chain.
func NewInputPin[C Inputs](chain *Shared[C], index int) (*InputPin[C], error) {
	if err := checkIndex(index, sharedBits(chain)); err != nil {
		return nil, err
	}
	return &InputPin[C]{chain: chain, index: index}, nil
}

// Index returns the logical pin index.
func (p *InputPin[C]) Index() int { return p.index }

// Read returns the level captured by the last Update.
func (p *InputPin[C]) Read() bool {
	var level bool
	p.chain.Borrow(func(c C) {
		level = c.Input(p.index)
	})
	return level
}

// IsHigh implements InputLine.
func (p *InputPin[C]) IsHigh() (bool, error) {
	return p.Read(), nil
}

// IsLow reports whether the captured level is low.
func (p *InputPin[C]) IsLow() (bool, error) {
	return !p.Read(), nil
}

// OutputPin is one output of a chain. Setting it only changes the buffer;
// the wire follows at the next Update.
type OutputPin[C Outputs] struct {
	chain *Shared[C]
	index int
}

// NewOutputPin binds a handle to output index of chain.
func NewOutputPin[C Outputs](chain *Shared[C], index int) (*OutputPin[C], error) {
	if err := checkIndex(index, sharedBits(chain)); err != nil {
		return nil, err
	}
	return &OutputPin[C]{chain: chain, index: index}, nil
}

// Index returns the logical pin index.
func (p *OutputPin[C]) Index() int { return p.index }

// Set buffers level for this pin.
func (p *OutputPin[C]) Set(level bool) {
	_ = p.chain.BorrowMut(func(c C) error {
		c.SetOutput(p.index, level)
		return nil
	})
}

// Level returns the buffered level, which is what the wire shows after the
// next Update.
func (p *OutputPin[C]) Level() bool {
	var level bool
	p.chain.Borrow(func(c C) {
		level = c.Output(p.index)
	})
	return level
}

// SetHigh implements OutputLine.
func (p *OutputPin[C]) SetHigh() error {
	p.Set(true)
	return nil
}

// SetLow implements OutputLine.
func (p *OutputPin[C]) SetLow() error {
	p.Set(false)
	return nil
}

func sharedBits[C interface{ Bits() int }](s *Shared[C]) int {
	var bits int
	s.Borrow(func(c C) {
		bits = c.Bits()
	})
	return bits
}
