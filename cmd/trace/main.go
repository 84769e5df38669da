package main

import "github.com/klabast/wb-services/trace/internal/commands"

func main() {
	commands.Execute()
}
