package main

import "github.com/hollowbeak/murmur/cmd"

func main() {
	cmd.Execute()
}
