package c

import "os"

func main() {
	os.Exit(1)
}
