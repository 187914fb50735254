package main

import "github.com/sujalbistaa/bookit/cmd/bookitctl/commands"

func main() {
	commands.Execute()
}
