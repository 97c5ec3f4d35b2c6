package main

import "github.com/panyam/vulnviz/cmd/vulnviz/commands"

func main() {
	commands.Execute()
}
