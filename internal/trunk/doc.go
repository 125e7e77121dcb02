// Package trunk provides the core primitives for the generalized force-law
// integration engine.
//
// The equation of motion is
//
//	ẍ = -∇V(x) + ωJv - γv + σξ + I(x,v,t)
//
// split into closed layer contracts:
//
//   - [ForceLayer]: additive force terms (gradient, injection, callback)
//   - [GaugeLayer]: exact speed-preserving velocity rotation
//   - [ThermoLayer]: dissipation + fluctuation (exact Ornstein-Uhlenbeck step)
//   - [State]: position‖velocity vector with energy and extension records
//
// # Example
//
//	grad := layers.NewGradientForce(pot.Potential, pot.Field, 0)
//	eng := engine.New([]trunk.ForceLayer{grad}, nil, nil)
//	next, _ := eng.Advance(trunk.NewState(vec))
//
// # Thread Safety
//
// Engines own a stateful RNG stream and a monotonic clock; they are NOT
// thread-safe. Concurrent simulations must each own an independent engine.
package trunk
