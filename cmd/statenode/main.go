// Command statenode loads statechart definitions and inspects how their
// node trees resolve events.
package main

func main() {
	Execute()
}
