package main

import "github.com/Skotchmaster/local_store/cmd/storefront/commands"

func main() {
	commands.Execute()
}
