//go:build !(linux || windows || darwin || freebsd)

package capture

// Resolve returns Unsupported: there is no capture backend for this OS.
func Resolve() ScreenCapture {
	return Unsupported{}
}
