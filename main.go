// SPDX-License-Identifier: MIT
package main

import "github.com/skaphos/gitfleet/cmd/gitfleet"

// execute is swappable for tests.
var execute = gitfleet.Execute

func main() {
	execute()
}
