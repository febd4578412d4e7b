package main

import "github.com/mabhi256/spaa/cmd"

func main() {
	cmd.Execute()
}
