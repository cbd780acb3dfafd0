package shiftreg

// OutputLine is a digital output the chain can drive. It is configured
// (direction, drive strength) by the host before it is handed over.
type OutputLine interface {
	SetHigh() error
	SetLow() error
}

// InputLine is a digital input the chain can sample.
type InputLine interface {
	IsHigh() (bool, error)
}

func drive(l OutputLine, high bool) error {
	if high {
		return l.SetHigh()
	}
	return l.SetLow()
}
