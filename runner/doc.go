// Package runner binds arguments to recipe parameters and executes recipe
// bodies as shell subprocesses.
//
// The two phases are separated on purpose. Resolve produces an Invocation
// with every parameter bound and every body line fully interpolated before
// a single subprocess spawns, so argument and interpolation errors can
// never leave a recipe half-executed. Runner then dispatches the resolved
// commands sequentially, honoring the quiet and ignore-failure modifiers
// and aborting on the first unignored failure.
package runner
