package main

import "duck/cmd"

func main() {
	cmd.Execute()
}
