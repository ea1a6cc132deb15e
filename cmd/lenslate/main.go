package main

import "github.com/lenslate/lenslate/cmd/lenslate/cmd"

func main() {
	cmd.Execute()
}
