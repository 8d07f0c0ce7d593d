package main

import (
	"sonicsplit/process"
	"sonicsplit/process_linux"
)

func newAttacher() process.ProcessAttacher {
	return process_linux.NewAttacher()
}
