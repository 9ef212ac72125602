package elements

import "math"

// mallet is a nonlinear felt contact launched at a rigid surface on every
// gate edge. Strength sets the impact speed and hardness the felt stiffness
// and contact time.
type mallet struct {
	mass      float32
	stiffness float32
	exponent  float32
	damping   float32

	contactMaxSamples int
	contactMinSamples int
	contactSamples    int
	inContact         bool

	pos float32
	vel float32
}

// forceScale maps contact force in newtons to a unit-ish excitation.
const forceScale = 0.05

func (m *mallet) strike(strength, hardness float32) {
	v := min(max(strength, 0), 1)
	h := min(max(hardness, 0), 1)

	m.mass = 0.010
	m.stiffness = 1.1e6 * (0.2 + 2.8*h*h)
	m.exponent = 2.1 + 0.5*h
	m.damping = 0.10 + 0.20*v
	m.contactMaxSamples = int(SampleRate * (0.006 - 0.005*h))
	m.contactMinSamples = int(SampleRate * 0.00025)
	m.contactSamples = 0
	m.inContact = true
	m.pos = 0.00012
	m.vel = 0.6 + 3.0*v
}

// step advances the contact and returns the scaled force.
func (m *mallet) step() float32 {
	if !m.inContact {
		return 0
	}

	const dt = 1.0 / SampleRate
	indentation := m.pos

	force := float32(0)
	if indentation > 0 {
		indPow := float32(math.Pow(float64(indentation), float64(m.exponent)))
		force = m.stiffness * indPow * (1.0 + m.damping*max(m.vel, 0))
	}
	if !isFinite(force) {
		m.inContact = false
		return 0
	}

	m.vel += -force / m.mass * dt
	m.pos += m.vel * dt

	m.contactSamples++
	if m.contactSamples >= m.contactMaxSamples {
		m.inContact = false
	}
	if m.contactSamples > m.contactMinSamples && indentation <= 0 && m.vel <= 0 {
		m.inContact = false
	}
	return force * forceScale
}

func (m *mallet) reset() {
	m.inContact = false
	m.contactSamples = 0
}
