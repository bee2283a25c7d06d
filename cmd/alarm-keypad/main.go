package main

import "github.com/oshokin/alarm-panel/cmd/alarm-keypad/cmd"

func main() {
	cmd.Execute()
}
