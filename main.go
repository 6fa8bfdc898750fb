package main

import "github.com/RyanBlaney/pcmscope/cmd"

func main() {
	cmd.Execute()
}
