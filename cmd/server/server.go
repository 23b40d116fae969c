// Package main is the entry point of the starter server.
package main

import (
	"starter-server/internal"
)

func main() {
	internal.Init()
}
