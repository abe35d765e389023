package main

import "reviewhub/cmd/moderator/command"

func main() {
	command.Execute()
}
