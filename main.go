package main

import "github.com/Ruscigno/PortfolioPulse/cmd"

func main() {
	cmd.Execute()
}
