package main

import (
	"sonicsplit/process"
	"sonicsplit/process_linux"
)

func newAttacher() process.ProcessAttacher {
	return process_linux.NewAttacher()
}

func openPID(pid process.ProcessID) (process.Process, error) {
	return process_linux.NewWithPID(pid)
}
