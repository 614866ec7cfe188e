package main

import "github.com/example/classroom-reserve/cmd"

func main() {
	cmd.Execute()
}
