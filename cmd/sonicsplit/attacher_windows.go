package main

import (
	"sonicsplit/process"
	"sonicsplit/process_windows"
)

func newAttacher() process.ProcessAttacher {
	return process_windows.NewAttacher()
}
