package bench

const (
	nPos    = 9000
	nPosVel = 1000
)

type Position struct {
	X float64
	Y float64
}

func (Position) Default() Position {
	return Position{}
}

type Velocity struct {
	X float64
	Y float64
}

func (Velocity) Default() Velocity {
	return Velocity{X: 1, Y: 1}
}
