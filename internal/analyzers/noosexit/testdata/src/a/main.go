package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("start")
	if len(os.Args) > 1 {
		os.Exit(2) // want "использование os.Exit в функции main запрещено"
	}
	defer fmt.Println("done")
	os.Exit(0) // want "использование os.Exit в функции main запрещено"
}
