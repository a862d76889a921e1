package main

import "github.com/josephlewis42/swell/cmd"

func main() {
	cmd.Execute()
}
