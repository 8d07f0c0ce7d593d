package process

// ProcessAttacher finds running processes and the images mapped into them
type ProcessAttacher interface {
	// Attach opens the first running process whose executable matches one of names
	Attach(names ...string) (Process, error)

	// Module returns the base and size of the named image inside proc
	Module(proc Process, name string) (Module, error)
}
