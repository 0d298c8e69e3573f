package colors

// init will ensure that ANSI coloring is enabled where the platform supports it. Unix terminals support it by
// default while Windows needs a kernel call to check for enablement
func init() {
	EnableColor()
}
