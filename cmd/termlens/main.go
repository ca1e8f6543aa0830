package main

import "github.com/termlens/termlens/internal/cmd"

func main() {
	cmd.Execute()
}
