package main

import "github.com/evalview/evalview/cmd"

func main() {
	cmd.Execute()
}
