// Package operations names the calls the command line can make. Each
// operation takes string arguments and returns a printable result, so the
// CLI dispatches through a map instead of a switch.
package operations
