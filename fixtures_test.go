package entities

type Position struct {
	X, Y float64
}

func (Position) Default() Position {
	return Position{}
}

type Velocity struct {
	X, Y float64
}

func (Velocity) Default() Velocity {
	return Velocity{X: 1, Y: 1}
}

type Health struct {
	Current, Max int
}

func (Health) Default() Health {
	return Health{Current: 100, Max: 100}
}

type Scale struct {
	Factor float32
}

func (Scale) Default() Scale {
	return Scale{Factor: 1}
}

// Label holds a string and can never be a component record.
type Label struct {
	Text string
}

func (Label) Default() Label {
	return Label{}
}

// Unregistered satisfies the capability but is never added to the kind table.
type Unregistered struct {
	V int
}

func (Unregistered) Default() Unregistered {
	return Unregistered{}
}

var (
	positionType = MustRegisterComponent[Position]()
	velocityType = MustRegisterComponent[Velocity]()
	healthType   = MustRegisterComponent[Health]()
	scaleType    = MustRegisterComponent[Scale]()
)
