package main

import "github.com/keelbrowser/keel/internal/cli/cmd"

func main() {
	cmd.Execute()
}
