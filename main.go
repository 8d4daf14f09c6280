package main

import "github.com/fernwood-software/tend/cmd"

func main() {
	cmd.Execute()
}
