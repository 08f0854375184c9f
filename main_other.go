//go:build !windows

package main

import "log"

func main() {
	log.Fatal("LutSwitch only runs on Windows")
}
