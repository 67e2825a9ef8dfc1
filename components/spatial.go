package components

// Position is where a planet sits in the viewer scene.
type Position struct {
	X, Y, Z float32
}

// Spin turns a planet about the scene's vertical axis.
type Spin struct {
	Angle float32 `inspect:"angle"` // radians
	Rate  float32 `inspect:"skip"`  // radians per second
}

// Advance turns the angle by dt seconds, wrapped to [0, 2π).
func (s *Spin) Advance(dt float32) {
	s.Angle += s.Rate * dt
	for s.Angle >= twoPi {
		s.Angle -= twoPi
	}
	for s.Angle < 0 {
		s.Angle += twoPi
	}
}

const twoPi = 6.283185307179586
