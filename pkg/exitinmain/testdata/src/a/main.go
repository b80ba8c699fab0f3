package main

import (
	"fmt"
	"os"
	sys "os"
)

func main() {
	defer fmt.Println("never printed")

	if len(os.Args) > 1 {
		os.Exit(1) // want "os.Exit call inside main function"
	}

	func() {
		sys.Exit(2) // want "os.Exit call inside main function"
	}()

	os.Exit(0) // want "os.Exit call inside main function"
}

func run() {
	os.Exit(3)
}

type server struct{}

func (server) main() {
	os.Exit(4)
}
