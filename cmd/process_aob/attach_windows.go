package main

import (
	"sonicsplit/process"
	"sonicsplit/process_windows"
)

func newAttacher() process.ProcessAttacher {
	return process_windows.NewAttacher()
}

func openPID(pid process.ProcessID) (process.Process, error) {
	return process_windows.NewWithPID(pid)
}
