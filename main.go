package main

import "github.com/inovacc/kintai/cmd"

func main() {
	cmd.Execute()
}
