// Package kinetics provides rate-law models for integration.
//
// Each model implements [Model], exposing its right-hand side as a
// [dynamo.Func]:
//
//   - [Decay]: first-order decay dy/dt = -λy
//   - [DecayChain]: consecutive first-order reactions A → B → C
//   - [NOBr]: reversible mass-action 2NO + Br2 ⇌ 2NOBr
//   - [Robertson]: the classic stiff three-species benchmark
//
// Models with a closed-form solution also implement [Analytic]; models
// whose stoichiometry conserves mass implement [Conserving] and report the
// linear combinations that the exact dynamics keep constant.
package kinetics
