//go:build sable_debug

package symbols

// debugResolver turns scope bookkeeping slips into panics. Build with
// -tags sable_debug.
const debugResolver = true
