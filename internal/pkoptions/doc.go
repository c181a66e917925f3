// Package pkoptions derives PK calculation options (dosing intervals,
// drug mass per body weight, infusion time) for a molecule of a simulation.
package pkoptions
