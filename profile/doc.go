// Package profile provides optional runtime profiling for the chore
// application.
//
// Profiling integrates [github.com/pkg/profile] behind conditional
// compilation. It must be enabled at build time with the "pprof" build tag;
// the default build compiles every operation down to a no-op.
//
// When enabled, supported modes are allocs, block, clock, cpu, goroutine,
// heap, mem, mutex, thread, and trace. Use [Modes] to retrieve the list
// programmatically. Profile files are written to the configured output
// directory with names matching the mode (cpu.pprof, mem.pprof, and so on),
// ready for go tool pprof.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
