package main

import "github.com/HaiFongPan/ndview/cmd"

func main() {
	cmd.Execute()
}
