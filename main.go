package main

import "github.com/xiaot623/gogo/companion/cmd"

func main() {
	cmd.Execute()
}
