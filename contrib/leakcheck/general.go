package leakcheck

// EnableAll turns on every tracker in this package.
func EnableAll() {
	EnableConnTracking()
}
