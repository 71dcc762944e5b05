// Command terminalsim runs the container terminal simulation.
package main

import "github.com/sarchlab/terminalsim/cmd"

func main() {
	cmd.Execute()
}
