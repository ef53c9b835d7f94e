// Command heroes is the terminal client of the heroes API: gallery, team
// builder and admin dashboard.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
