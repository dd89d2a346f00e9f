//go:build !sable_debug

package symbols

const debugResolver = false
