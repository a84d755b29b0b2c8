package main

import (
	"os"
	sys "os"
)

func main() {
	go func() {
		os.Exit(1)
	}()

	stop := func() { os.Exit(1) }
	_ = stop

	sys.Exit(3) // want "использование os.Exit в функции main запрещено"
}

func helper() {
	os.Exit(1)
}
