// Package dynamo provides the point-mass simulation engine.
//
// A [Scene] owns an ordered set of particles ([Mass]) and a list of forces
// acting between them. Forces are a closed set of variants:
//
//   - [Spring]: Hooke's law between two particles, no damping
//   - [Gravity]: Newtonian attraction between every pair of a participant set
//   - [UniformGravity]: a constant acceleration field applied to every particle
//
// The scene is advanced by an [Integrator] in fixed outer steps of length dt,
// each split into substeps inner steps of length dt/substeps. One [Frame] is
// recorded per outer step; [Scene.Simulate] collects the frames into a
// [Result], frame 0 being the initial conditions.
//
// # Example
//
//	s := dynamo.NewScene()
//	sun := s.Mass().Mass(50)
//	planet := s.Mass().Mass(1).At(dynamo.V(10, 0)).Vel(dynamo.V(0, 1))
//	_ = s.AddForce(dynamo.NewGravity([]int{sun.Index(), planet.Index()}, dynamo.WithG(0.2)))
//	result, _ := s.Simulate(3600, 200, 1.0/60)
//
// # Anchors
//
// A particle with zero mass is an anchor: it still takes part in force
// evaluation but the integrator never moves it.
//
// # Thread Safety
//
// A Scene is owned by the goroutine driving it and is NOT safe for concurrent
// use. Independent scenes share no state and may run in parallel. A [Result]
// is immutable once returned.
package dynamo
